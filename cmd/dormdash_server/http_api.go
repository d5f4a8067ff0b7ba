package main

import (
	"encoding/json"
	"errors"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dormhub/dormdash/internal/engine"
	"github.com/dormhub/dormdash/internal/wshandler"
	"github.com/dormhub/dormdash/pkg/log"
	"github.com/dormhub/dormdash/pkg/model"
)

type HttpServer struct {
	f    *fiber.App
	addr string
}

func NewHttp(app *App) *HttpServer {
	api := &HttpServer{addr: app.config.ApiAddr()}

	api.f = fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true})

	api.f.Use(log.NewFiberLogger(&log.LoggerConfig{Name: "api", DoMetrics: true, LogErrorsOnly: true}))

	api.f.Get("/api/room", getRoomsHandler(app))

	api.f.Get("/api/invite", getInvitesHandler(app))
	api.f.Post("/api/invite", postInviteHandler(app))
	api.f.Post("/api/invite/:id/respond", respondHandler(app))

	api.f.Get("/api/workorder", getWorkOrdersHandler(app))
	api.f.Post("/api/workorder", postWorkOrderHandler(app))
	api.f.Put("/api/workorder/:id/status", putWorkOrderStatusHandler(app))

	api.f.Get("/api/density", getDensityHandler(app))

	api.f.Get("/ws", getWsHandler(app))

	api.f.Get("/stack", getStackHandler())
	api.f.Get("/metrics", getMetricsHandler())

	return api
}

func (api *HttpServer) Address() string {
	return api.addr
}

func (api *HttpServer) Listen() error {
	return api.f.Listen(api.addr)
}

func getRoomsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.dbm.RoomQuery().Limit(0).Get())
	}
}

func getInvitesHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.eng.WebList())
	}
}

type inviteRequest struct {
	From  string `json:"from"`
	Group string `json:"group"`
	Room  string `json:"room"`
}

func postInviteHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(inviteRequest)

		if err := json.Unmarshal(ctx.Body(), req); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		if req.From == "" || req.Group == "" {
			return ctx.Status(fiber.StatusBadRequest).SendString("from and group are required")
		}

		inv := &model.Invite{
			ID:        uuid.NewString(),
			From:      req.From,
			Group:     req.Group,
			Room:      req.Room,
			CreatedAt: time.Now().UTC(),
			Status:    model.StatusPending,
		}

		if err := app.dbm.Create(inv); err != nil {
			return ctx.SendStatus(fiber.StatusInternalServerError)
		}

		app.eng.Add(inv)
		invitesCreatedMetric.Inc()

		return ctx.JSON(inv.ToWeb(engine.ResponseWindow))
	}
}

type respondRequest struct {
	Decision string `json:"decision"`
}

func respondHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id := ctx.Params("id")

		req := new(respondRequest)

		if err := json.Unmarshal(ctx.Body(), req); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		decision := model.InviteStatus(req.Decision)
		if !decision.Decision() {
			return ctx.Status(fiber.StatusBadRequest).SendString("decision must be accepted or declined")
		}

		err := app.eng.Respond(id, decision)

		switch {
		case errors.Is(err, engine.ErrNotFound):
			return ctx.SendStatus(fiber.StatusNotFound)
		case errors.Is(err, engine.ErrInvalidTransition):
			app.logger.Warn("response for non-pending invite " + id)

			return ctx.SendStatus(fiber.StatusConflict)
		case err != nil:
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		app.saveInviteStatus(id, decision)

		inv, _ := app.eng.Get(id)

		return ctx.JSON(inv.ToWeb(0))
	}
}

func getWorkOrdersHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		res := make([]*model.WebWorkOrder, 0)

		app.orders.ForEach(func(o *model.WorkOrder) bool {
			res = append(res, o.ToWeb())

			return true
		})

		sort.Slice(res, func(i, j int) bool {
			if res[i].CreatedAt.Equal(res[j].CreatedAt) {
				return res[i].ID < res[j].ID
			}

			return res[i].CreatedAt.Before(res[j].CreatedAt)
		})

		return ctx.JSON(res)
	}
}

type workOrderRequest struct {
	RoomID   string `json:"room_id"`
	Task     string `json:"task"`
	Priority string `json:"priority"`
}

func postWorkOrderHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(workOrderRequest)

		if err := json.Unmarshal(ctx.Body(), req); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		priority := model.Priority(req.Priority)
		if priority == "" {
			priority = model.PriorityLow
		}

		if req.RoomID == "" || req.Task == "" || !priority.Valid() {
			return ctx.Status(fiber.StatusBadRequest).SendString("room_id, task and a valid priority are required")
		}

		now := time.Now().UTC()

		o := &model.WorkOrder{
			ID:        uuid.NewString(),
			RoomID:    req.RoomID,
			Task:      req.Task,
			Priority:  priority,
			Status:    model.OrderPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := app.dbm.Create(o); err != nil {
			return ctx.SendStatus(fiber.StatusInternalServerError)
		}

		app.orders.Store(o)
		ordersCreatedMetric.Inc()
		app.broadcastDensity()

		return ctx.JSON(o.ToWeb())
	}
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func putWorkOrderStatusHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id := ctx.Params("id")

		req := new(orderStatusRequest)

		if err := json.Unmarshal(ctx.Body(), req); err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}

		status := model.OrderStatus(req.Status)
		if !status.Valid() {
			return ctx.Status(fiber.StatusBadRequest).SendString("invalid status")
		}

		o := app.orders.Get(id)
		if o == nil {
			return ctx.SendStatus(fiber.StatusNotFound)
		}

		if o.Status == model.OrderCompleted {
			return ctx.SendStatus(fiber.StatusConflict)
		}

		// never mutate the stored order in place, readers may hold it
		updated := *o
		updated.Status = status
		updated.UpdatedAt = time.Now().UTC()

		if err := app.dbm.Save(&updated); err != nil {
			return ctx.SendStatus(fiber.StatusInternalServerError)
		}

		app.orders.Store(&updated)
		app.broadcastDensity()

		return ctx.JSON(updated.ToWeb())
	}
}

func getDensityHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.density())
	}
}

func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {
		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, ws)

		app.logger.Debug("ws listener connected")
		app.eng.Subscribe(name, h.SendEvent)
		app.densityCb.SubscribeNamed(name, h.SendDensity)
		h.SendDensity(app.density())
		h.Listen()
		app.logger.Debug("ws listener disconnected")
		app.eng.Unsubscribe(name)
		app.densityCb.Unsubscribe(name)
	})
}

func getStackHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return pprof.Lookup("goroutine").WriteTo(ctx.Response().BodyWriter(), 1)
	}
}

func getMetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{DisableCompression: true},
	))
}
