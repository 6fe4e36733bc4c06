/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	slf4go "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/device"
	"github.com/massenz/fsm-refmodel/machine"
	"github.com/massenz/fsm-refmodel/pubsub"
	"github.com/massenz/fsm-refmodel/server"
	"github.com/massenz/fsm-refmodel/storage"
)

var (
	logger = zlog.With().Str("logger", "fsmsrv").Logger()

	listener *pubsub.EventsListener
	pub      *pubsub.SqsPublisher
	sub      *pubsub.SqsSubscriber
	store    storage.StoreManager
	fleet    = machine.NewFleet()
	wg       sync.WaitGroup

	// notificationsCh is the channel over which event outcomes are sent to
	// be published on the appropriate queue.
	// The Listener produces a notification for every processed event; they
	// are consumed by the PubSub Publisher (if configured) which in turn
	// produces to the -notifications topic.
	//
	// Not configured by default, it is only used if a -notifications queue
	// is defined.
	notificationsCh chan api.EventResponse = nil

	// eventsCh is the channel over which the Listener receives Events to process.
	// Both the HTTP Server and the PubSub Subscriber (if configured) produce
	// events for this channel.
	//
	// Currently, this is a blocking channel (capacity for one item); the single
	// Listener goroutine is what serializes delivery to each machine.
	eventsCh = make(chan api.EventRequest)
)

func main() {
	// Global zerolog configuration.
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zlog.Logger = zlog.Output(os.Stderr)

	var awsEndpoint = flag.String("endpoint-url", "",
		"HTTP URL for AWS SQS to connect to; usually best left undefined, "+
			"unless required for local testing purposes (LocalStack uses http://localhost:4566)")
	var cluster = flag.Bool("cluster", false,
		"If set, connects to Redis with cluster-mode enabled")
	var configPath = flag.String("config", "",
		"Path to the YAML machine configuration; if not specified, the built-in "+
			"device configuration is used")
	var debug = flag.Bool("debug", false,
		"Verbose logs; better to avoid on Production services")
	var eventsTopic = flag.String("events", "", "Topic name to receive events from")
	var httpPort = flag.Int("http-port", 7399, "The port for the HTTP Server")
	var machines = flag.String("machines", "device-1",
		"Comma-separated list of machine IDs to assemble and serve")
	var maxRetries = flag.Int("max-retries", storage.DefaultMaxRetries,
		"Max number of attempts for a recoverable error to be retried against the Redis cluster")
	var notificationsTopic = flag.String("notifications", "",
		"(optional) The name of the topic to publish events' outcomes to; if not "+
			"specified, no outcomes will be published")
	var redisUrl = flag.String("redis", "", "For single node Redis instances: host:port "+
		"for the Redis instance. For redis clusters: a comma-separated list of redis nodes. "+
		"If using an ElastiCache Redis cluster with cluster mode enabled, this can also be the configuration endpoint.")
	var strategy = flag.String("strategy", string(device.Mediated),
		fmt.Sprintf("Transition resolution strategy, one of: %s, %s",
			device.Mediated, device.Embedded))
	var timeout = flag.Duration("timeout", storage.DefaultTimeout,
		"Timeout for Redis (as a Duration string, e.g. 1s, 20ms, etc.)")
	var trace = flag.Bool("trace", false,
		"Extremely verbose logs for every API request and Pub/Sub event; it may impact"+
			" performance, do not use in production or on heavily loaded systems (will override the -debug option)")
	flag.Parse()

	logger.Info().Str("release", server.Release).Msg("starting FSM Server")

	if *redisUrl == "" {
		logger.Info().Msg("no Redis server configured, using in-memory store")
		store = storage.NewInMemoryStore()
	} else {
		logger.Info().
			Str("redis_addr", *redisUrl).
			Str("redis_cluster", strconv.FormatBool(*cluster)).
			Str("redis_timeout", timeout.String()).
			Str("redis_max_retries", strconv.Itoa(*maxRetries)).
			Msg("connecting to Redis server")
		store = storage.NewRedisStore(*redisUrl, *cluster, storage.DefaultRedisDb,
			*timeout, *maxRetries)
	}

	cfg := loadConfiguration(*configPath)
	if err := store.PutConfig(cfg); err != nil {
		// Restarting against the same Redis leaves the immutable version in place.
		logger.Warn().Err(err).Str("config", cfg.VersionID()).Msg("configuration not stored")
	}
	assembleFleet(cfg, device.Strategy(*strategy), strings.Split(*machines, ","))

	done := make(chan interface{})
	if *eventsTopic != "" {
		logger.Info().
			Str("sqs_topic", *eventsTopic).
			Str("sqs_endpoint", *awsEndpoint).
			Msg("connecting to SQS topic for incoming events")
		sub = pubsub.NewSqsSubscriber(eventsCh, awsEndpoint)
		if sub == nil {
			logger.Fatal().Err(errors.New("cannot create a valid SQS Subscriber")).Msg("fatal error creating SQS subscriber")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info().Msgf("subscribing to events on topic [%s]", *eventsTopic)
			sub.Subscribe(*eventsTopic, done)
		}()
	}

	if *notificationsTopic != "" {
		logger.Info().
			Str("sqs_notifications_topic", *notificationsTopic).
			Str("sqs_endpoint", *awsEndpoint).
			Msg("sending event outcomes to notifications topic")
		notificationsCh = make(chan api.EventResponse)
		defer close(notificationsCh)
		pub = pubsub.NewSqsPublisher(notificationsCh, awsEndpoint)
		if pub == nil {
			logger.Fatal().Err(errors.New("cannot create a valid SQS Publisher")).Msg("fatal error creating SQS publisher")
		}
		go pub.Publish(*notificationsTopic)
	}

	listener = pubsub.NewEventsListener(&pubsub.ListenerOptions{
		EventsChannel:        eventsCh,
		NotificationsChannel: notificationsCh,
		Store:                store,
		Machines:             fleet,
	})
	logger.Info().Msg("starting events listener")
	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.ListenForMessages()
	}()

	server.SetStore(store)
	server.SetFleet(fleet)
	server.SetEventsChannel(eventsCh)
	logger.Info().Str("http_port", strconv.Itoa(*httpPort)).Msg("HTTP server starting")
	svr := startHTTPServer(*httpPort)

	// This should not be invoked until we have initialized all the services.
	setLogLevel(*debug, *trace)
	logger.Info().Msg("FSM server ready for processing events...")
	RunUntilStopped(done, svr)
	logger.Info().Msg("...done. Goodbye.")
}

// loadConfiguration reads the YAML configuration from `path`, falling back to
// the built-in device configuration when no path is given.
func loadConfiguration(path string) *machine.Configuration {
	if path == "" {
		return device.DefaultConfiguration()
	}
	cfg, err := machine.FromFile(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("cannot load configuration")
	}
	return cfg
}

// assembleFleet builds one Context per machine ID and registers it with the fleet;
// any assembly error is fatal, a server with a missing machine is of no use.
func assembleFleet(cfg *machine.Configuration, strategy device.Strategy, ids []string) {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		ctx, err := device.Assemble(id, cfg, strategy)
		if err != nil {
			logger.Fatal().Err(err).Str("machine", id).Msg("cannot assemble machine")
		}
		if err := fleet.Add(ctx); err != nil {
			logger.Fatal().Err(err).Str("machine", id).Msg("cannot add machine to fleet")
		}
		logger.Info().
			Str("machine", id).
			Str("config", cfg.VersionID()).
			Str("initial", string(ctx.CurrentIdentity())).
			Msg("machine assembled")
	}
	if fleet.Len() == 0 {
		logger.Fatal().Err(errors.New("no machines configured")).Msg("fatal configuration error")
	}
}

func RunUntilStopped(done chan interface{}, svr *http.Server) {
	// Trap Ctrl-C and SIGTERM (Docker/Kubernetes) to shutdown gracefully
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block until a signal is received.
	<-c
	logger.Info().Msg("shutting down services...")
	close(done)
	close(eventsCh)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svr.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	logger.Info().Msg("waiting for services to exit...")
	wg.Wait()
}

// setLogLevel sets the global logging level depending on -debug / -trace.
// If both are set, then -trace takes priority.
func setLogLevel(debug bool, trace bool) {
	level := zerolog.InfoLevel
	if debug && !trace {
		logger.Info().Msg("verbose logging enabled")
		level = zerolog.DebugLevel
		server.SetLogLevel(slf4go.DEBUG)
		listener.SetLogLevel(slf4go.DEBUG)
		store.SetLogLevel(slf4go.DEBUG)
	} else if trace {
		logger.Info().Msg("trace logging enabled")
		level = zerolog.TraceLevel
		server.EnableTracing()
		listener.SetLogLevel(slf4go.TRACE)
		store.SetLogLevel(slf4go.TRACE)
		if sub != nil {
			sub.SetLogLevel(slf4go.TRACE)
		}
		if pub != nil {
			pub.SetLogLevel(slf4go.TRACE)
		}
	}
	zerolog.SetGlobalLevel(level)
}

// startHTTPServer starts the API server on the local `port`, serving the
// machine and event endpoints. It returns immediately, serving from a
// separate goroutine.
func startHTTPServer(port int) *http.Server {
	svr := server.NewHTTPServer(fmt.Sprintf(":%d", port), slf4go.INFO)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server exited with error")
		}
		logger.Info().Msg("HTTP Server exited")
	}()
	return svr
}
