package datastructure

import "github.com/nextzen/thor/pkg/util"

var (
	ErrTileNotFound = util.WrapErrorf(util.ErrNotFound, util.ErrNotFound, "tile not found")
	ErrNodeNotFound = util.WrapErrorf(util.ErrNotFound, util.ErrNotFound, "node not found in tile")
	ErrEdgeNotFound = util.WrapErrorf(util.ErrNotFound, util.ErrNotFound, "edge not found in tile")
)
