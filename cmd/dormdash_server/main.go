package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dormhub/dormdash/internal/callbacks"
	"github.com/dormhub/dormdash/internal/config"
	"github.com/dormhub/dormdash/internal/database"
	"github.com/dormhub/dormdash/internal/density"
	"github.com/dormhub/dormdash/internal/engine"
	"github.com/dormhub/dormdash/internal/repository"
	"github.com/dormhub/dormdash/pkg/model"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

const cleanerInterval = time.Minute

type App struct {
	logger *slog.Logger
	config *config.AppConfig
	dbm    *database.DatabaseManager
	eng    *engine.Engine
	orders repository.WorkOrderRepository

	densityCb *callbacks.Callback[map[string]density.Bucket]
	stop      chan struct{}
}

func NewApp(cfg *config.AppConfig) *App {
	logger := slog.Default()

	db, err := database.Open(cfg.DB())
	if err != nil {
		panic(err)
	}

	app := &App{
		logger:    logger,
		config:    cfg,
		dbm:       database.New(db),
		eng:       engine.New(logger),
		orders:    repository.NewWorkOrderMemoryRepo(),
		densityCb: callbacks.New[map[string]density.Bucket](),
		stop:      make(chan struct{}),
	}

	if err := app.dbm.Migrate(); err != nil {
		panic(err)
	}

	return app
}

func (app *App) Run() {
	app.startup()

	go app.cleaner()

	api := NewHttp(app)

	go func() {
		if err := api.Listen(); err != nil {
			panic(err)
		}
	}()

	app.logger.Info("listening " + api.Address())

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	app.logger.Info("exiting...")
	close(app.stop)
	app.eng.Stop()
}

// startup wires persistence and rebuilds the working sets. The expiry
// subscriber must be listening before loadState, which expires stale
// pending invites during Reload.
func (app *App) startup() {
	app.loadRooms()

	// terminal transitions out of the engine land in the database;
	// user responses are persisted synchronously by the API handler
	app.eng.Subscribe("db", func(ev *engine.Event) bool {
		if ev.Type == engine.EventExpired {
			app.saveInviteStatus(ev.Invite.ID, model.StatusExpired)
		}

		return true
	})

	app.loadState()
}

// loadRooms seeds the room list from a yaml file on first start.
func (app *App) loadRooms() {
	if app.config.RoomsFile() == "" || app.dbm.RoomQuery().Count() > 0 {
		return
	}

	f, err := os.Open(app.config.RoomsFile())
	if err != nil {
		return
	}

	defer f.Close()

	rooms := make([]*model.Room, 0)
	if err := yaml.NewDecoder(f).Decode(&rooms); err != nil {
		app.logger.Error("error reading rooms", slog.Any("error", err))

		return
	}

	for _, r := range rooms {
		if err := app.dbm.Save(r); err != nil {
			app.logger.Error("error saving room "+r.ID, slog.Any("error", err))
		}
	}

	app.logger.Info(fmt.Sprintf("loaded %d rooms", len(rooms)))
}

// loadState rebuilds the working sets from the database. Pending
// invites past their window expire right away inside Reload.
func (app *App) loadState() {
	invites := app.dbm.InviteQuery().Status(model.StatusPending).Limit(0).Get()
	app.eng.Reload(invites)

	for _, o := range app.dbm.WorkOrderQuery().Open().Limit(0).Get() {
		app.orders.Store(o)
	}

	app.logger.Info(fmt.Sprintf("loaded %d pending invites, %d open work orders",
		len(invites), len(app.orders.Snapshot())))
}

func (app *App) saveInviteStatus(id string, status model.InviteStatus) {
	err := app.dbm.InviteQuery().Id(id).Update(map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	})

	if err != nil {
		app.logger.Error("error saving invite "+id, slog.Any("error", err))
	}
}

func (app *App) density() map[string]density.Bucket {
	return density.Aggregate(app.orders.Snapshot())
}

func (app *App) broadcastDensity() {
	app.densityCb.Broadcast(app.density())
}

func (app *App) cleaner() {
	ticker := time.NewTicker(cleanerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := app.eng.Purge(app.config.Retention()); n > 0 {
				app.logger.Debug(fmt.Sprintf("purged %d invites", n))
			}
		case <-app.stop:
			return
		}
	}
}

func main() {
	fmt.Printf("version %s %s\n", gitRevision, gitBranch)

	var debug = flag.Bool("debug", false, "debug logging")
	var conf = flag.String("config", "dormdash.yml", "name of config file")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg := config.NewAppConfig()

	if !cfg.Load(*conf) {
		slog.Info("no config file loaded, using defaults")
	}

	if err := cfg.LoadEnv("DORMDASH_"); err != nil {
		slog.Error("env config error", slog.Any("error", err))
	}

	NewApp(cfg).Run()
}
