package statswkr

import (
	"context"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/fx"

	"exusiai.dev/boxstats/internal/app/appconfig"
	"exusiai.dev/boxstats/internal/app/appcontext"
	"exusiai.dev/boxstats/internal/constant"
	"exusiai.dev/boxstats/internal/infra"
	"exusiai.dev/boxstats/internal/model/types"
	"exusiai.dev/boxstats/internal/pkg/observability"
	"exusiai.dev/boxstats/internal/service"
)

type WorkerDeps struct {
	fx.In

	JetStream    nats.JetStreamContext
	StatsService *service.Stats
}

type Worker struct {
	// timeout bounds the warm-up of a single owner
	timeout time.Duration

	// concurrency is the number of consumers spawned
	concurrency int

	WorkerDeps
}

// Start consumes season events and re-warms the statistics of the owner
// whose seasons changed. The worker only runs inside the server.
func Start(lc fx.Lifecycle, conf *appconfig.Config, deps WorkerDeps) {
	if !conf.WorkerEnabled || conf.AppContext.Env != appcontext.EnvServer {
		log.Info().
			Str("evt.name", "worker.statswkr.disabled").
			Msg("stats worker is disabled")
		return
	}

	w := &Worker{
		timeout:     conf.WorkerTimeout,
		concurrency: conf.WorkerConcurrency,
		WorkerDeps:  deps,
	}
	if w.concurrency < 1 {
		w.concurrency = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			msgs := make(chan *nats.Msg, 16)
			if _, err := w.JetStream.ChanQueueSubscribe(infra.SeasonSubjects, constant.StatsWorkerQueue, msgs,
				nats.BindStream(infra.SeasonStreamName),
				nats.Durable(constant.StatsWorkerDurable),
				nats.ManualAck(),
				nats.AckWait(w.timeout+time.Second*10),
				nats.MaxAckPending(128),
			); err != nil {
				cancel()
				return errors.Wrap(err, "failed to subscribe to "+infra.SeasonSubjects)
			}

			for i := 0; i < w.concurrency; i++ {
				go w.Consumer(ctx, msgs)
			}
			log.Info().
				Str("evt.name", "worker.statswkr.started").
				Int("concurrency", w.concurrency).
				Msg("stats worker started")
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) Consumer(ctx context.Context, msgs <-chan *nats.Msg) {
	for {
		select {
		case msg := <-msgs:
			w.handle(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *nats.Msg) {
	event, err := decodeEvent(msg.Data)
	if err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "worker.statswkr.decode").
			Str("subject", msg.Subject).
			Msg("dropping undecodable season event")
		if err := msg.Term(); err != nil {
			log.Error().Err(err).Msg("failed to terminate msg")
		}
		return
	}
	observability.WorkerMessagingLatency.Observe(time.Since(event.PublishedAt).Seconds())

	taskCtx, cancelTask := context.WithTimeout(ctx, w.timeout)
	defer cancelTask()
	inprogressInformer := time.AfterFunc(w.timeout/2, func() {
		if err := msg.InProgress(); err != nil {
			log.Error().Err(err).Msg("failed to set msg InProgress")
		}
	})
	defer inprogressInformer.Stop()

	start := time.Now()
	err = w.warm(taskCtx, event)
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.WorkerWarmDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "worker.statswkr.warm").
			Str("event", spew.Sdump(event)).
			Msg("failed to warm owner statistics")
		if err := msg.NakWithDelay(time.Second * 5); err != nil {
			log.Error().Err(err).Msg("failed to nak")
		}
		return
	}

	if err := msg.Ack(); err != nil {
		log.Error().Err(err).Msg("failed to ack")
	}
	log.Debug().
		Str("evt.name", "worker.statswkr.warmed").
		Int("accountId", event.AccountID).
		Str("seasonId", event.SeasonID).
		Int("version", event.Version).
		Msg("owner statistics warmed")
}

// warm drops whatever was cached while the write was in flight and
// recomputes the owner's all-season views.
func (w *Worker) warm(ctx context.Context, event *types.SeasonEvent) error {
	if err := w.StatsService.Invalidate(ctx, event.AccountID); err != nil {
		return err
	}
	return w.StatsService.Warm(ctx, event.AccountID)
}

func decodeEvent(data []byte) (*types.SeasonEvent, error) {
	event := &types.SeasonEvent{}
	if err := msgpack.Unmarshal(data, event); err != nil {
		return nil, err
	}
	if event.AccountID == 0 || event.SeasonID == "" {
		return nil, errors.New("season event is missing its owner or season")
	}
	return event, nil
}
