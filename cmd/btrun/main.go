package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/agent"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/definition"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/injector"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "btrun:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(args, os.LookupEnv)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stderr, config.Usage())
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w\n%s", err, config.Usage())
	}

	rt, cleanup, err := injector.InitializeRuntime(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer cleanup()
	logger := rt.Logger.Named("btrun")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := definition.LoadFile(cfg.Definition)
	if err != nil {
		return err
	}
	tmpl, err := doc.Build()
	if err != nil {
		return fmt.Errorf("build %s: %w", cfg.Definition, err)
	}
	fingerprint, err := definition.Fingerprint(doc)
	if err != nil {
		return err
	}
	logger.Info("definition loaded",
		log.String("path", cfg.Definition),
		log.String("tree", tmpl.Name()),
		log.Int("nodes", tmpl.Len()),
		log.String("fingerprint", fmt.Sprintf("%016x", fingerprint)),
	)

	counter := newEventCounter()
	sub, err := rt.Events.Subscribe(bus.Wildcard, counter.handle)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Events.Unsubscribe(sub) }()

	values := make(map[string]any, len(cfg.Values))
	for _, k := range cfg.Keys() {
		values[k] = agent.ParseValue(cfg.Values[k])
	}
	agents, err := rt.Manager.SpawnWith(tmpl, cfg.Agents, func(i int) []agent.Option {
		opts := []agent.Option{agent.WithValues(values)}
		if cfg.Seed != 0 {
			opts = append(opts, agent.WithRandSource(bt.SeededRandSource(cfg.Seed+uint64(i))))
		}
		return opts
	})
	if err != nil {
		return err
	}

	results, err := rt.Manager.Run(ctx, agent.RunOptions{
		Frames:         cfg.Frames,
		Interval:       cfg.Interval,
		StopOnTerminal: cfg.StopOnTerminal,
		Workers:        cfg.Workers,
	})
	if err != nil {
		return err
	}

	byStatus := map[bt.Status]int{}
	for i, r := range results {
		byStatus[r.Status]++
		logger.Info("agent finished",
			log.String("agent", r.Name),
			log.String("agent_id", r.AgentID),
			log.Stringer("status", r.Status),
			log.Uint64("frames", r.Frames),
		)
		if logger.Enabled(log.LevelDebug) {
			logger.Debug("blackboard", log.String("agent", r.Name), log.Any("values", agents[i].Blackboard().Snapshot()))
		}
	}
	logger.Info("run summary",
		log.Int("agents", len(results)),
		log.Int("success", byStatus[bt.StatusSuccess]),
		log.Int("failure", byStatus[bt.StatusFailure]),
		log.Int("running", byStatus[bt.StatusRunning]),
		log.Any("events", counter.snapshot()),
		log.Bool("interrupted", ctx.Err() != nil),
	)
	return nil
}

type eventCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newEventCounter() *eventCounter {
	return &eventCounter{counts: make(map[string]int)}
}

func (c *eventCounter) handle(e bus.Event) error {
	c.mu.Lock()
	c.counts[e.Type()]++
	c.mu.Unlock()
	return nil
}

func (c *eventCounter) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
