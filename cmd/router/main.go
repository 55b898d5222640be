// Command router wires the route-assembly core into a runnable HTTP
// service: flag-based process options, viper-backed config, explicit
// construction of every collaborator, graceful shutdown on signal.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nextzen/thor/pkg/costfunction"
	"github.com/nextzen/thor/pkg/datastructure"
	"github.com/nextzen/thor/pkg/engine/routing"
	"github.com/nextzen/thor/pkg/guidance"
	httptransport "github.com/nextzen/thor/pkg/http"
	"github.com/nextzen/thor/pkg/http/usecases"
	"github.com/nextzen/thor/pkg/logger"
	"github.com/nextzen/thor/pkg/mapmatcher"
	"github.com/nextzen/thor/pkg/spatialindex"
	"github.com/nextzen/thor/pkg/thor"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	logLevel = flag.String("log_level", "info", "zap log level")
)

func main() {
	flag.Parse()

	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.SetDefault("api_port", 6060)
	viper.SetDefault("search_radius_km", 0.5)
	viper.SetDefault("long_request_ms", 5000)
	viper.SetDefault("default_speed_kph", 60.0)
	if err := viper.ReadInConfig(); err != nil {
		// No config file is fine for the demo server; defaults above
		// carry it.
		_ = err
	}

	log, err := logger.New(*logLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	reader := buildDemoGraph(log)

	modeCosting := [4]costfunction.Model{
		costfunction.NewDefaultModel(viper.GetFloat64("default_speed_kph"), true),
		costfunction.NewDefaultModel(20.0, true),
		costfunction.NewDefaultModel(5.0, true),
		costfunction.NewDefaultModel(40.0, true),
	}

	forward := routing.NewForwardAStar()
	bidirectional := routing.NewBidirectionalAStar()
	multimodal := routing.NewMultiModalAstar()

	longRequest := time.Duration(viper.GetInt("long_request_ms")) * time.Millisecond
	orchestrator := thor.NewLegOrchestrator(
		reader, modeCosting,
		forward, bidirectional, multimodal,
		guidance.NewDefaultTripPathBuilder(),
		log,
		longRequest.Seconds(),
	)

	rt := spatialindex.NewRtree(log)
	rt.Build(reader, reader.AllEdges(), func(id datastructure.GraphId) (datastructure.Coordinate, datastructure.Coordinate) {
		edge, err := reader.Edge(id)
		if err != nil {
			return datastructure.Coordinate{}, datastructure.Coordinate{}
		}
		beginNode, err := reader.BeginNode(id)
		if err != nil {
			return datastructure.Coordinate{}, datastructure.Coordinate{}
		}
		endNode, err := reader.Node(edge.EndNode())
		if err != nil {
			return datastructure.Coordinate{}, datastructure.Coordinate{}
		}
		return beginNode.LatLng(), endNode.LatLng()
	}, viper.GetFloat64("search_radius_km"))

	matcher := mapmatcher.NewGreedyMHTMatcher(reader, rt, viper.GetFloat64("search_radius_km"), log)

	routingService := usecases.NewRoutingService(
		orchestrator, reader, rt,
		matcher, modeCosting,
		guidance.NewDefaultTripPathBuilder(),
		viper.GetFloat64("search_radius_km"),
		log,
	)

	api := httptransport.NewAPI(log, routingService)

	addr := ":" + viper.GetString("api_port")
	if viper.GetString("api_port") == "" {
		addr = ":6060"
	}
	server := &http.Server{
		Addr:    addr,
		Handler: api.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("thor routing server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
