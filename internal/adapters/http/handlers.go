package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
)

// ViewportState is the camera together with the rotation switch.
type ViewportState struct {
	Viewport  domain.Viewport `json:"viewport"`
	Rotate    bool            `json:"rotate"`
	IconScale float64         `json:"icon_scale"`
}

type rotationRequest struct {
	Enabled *bool `json:"enabled"`
}

type rotationResponse struct {
	Enabled bool `json:"enabled"`
}

func viewportState(deps *Dependencies) ViewportState {
	vp := deps.Loop.Viewport()
	return ViewportState{Viewport: vp, Rotate: deps.Loop.Rotating(), IconScale: vp.IconScale()}
}

// SnapshotHandler returns the latest published snapshot.
func SnapshotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Loop.Current())
	}
}

// RequestsHandler lists ride requests of the current snapshot, optionally
// filtered by state=unassigned|assigned.
func RequestsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := deps.Loop.Current()

		var requests []domain.RideRequest
		switch c.Query("state") {
		case "":
			requests = snap.Requests
		case "unassigned":
			requests = snap.UnassignedRequests()
		case "assigned":
			requests = snap.AssignedRequests()
		default:
			return errBadRequest(c, "state must be unassigned or assigned")
		}

		offset, limit := parsePage(c, 100, 1000)
		pg := Pagination{Offset: offset, Limit: limit, Total: len(requests)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: pageOf(requests, offset, limit), Pagination: pg})
	}
}

// DronesHandler returns the decorated drone states of the current snapshot.
func DronesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Loop.Current().Drones)
	}
}

// VertiportsHandler returns the heat-colored vertiports of the current snapshot.
func VertiportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Loop.Current().Vertiports)
	}
}

// LegendHandler returns the team colors.
func LegendHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Loop.Palette().Legend())
	}
}

// MetricsViewHandler returns the tabular metrics view of the current snapshot.
func MetricsViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(usecases.MetricsView(deps.Loop.Current(), deps.Loop.Palette()))
	}
}

func GetViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(viewportState(deps))
	}
}

// PatchViewportHandler applies a partial camera change.
func PatchViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch domain.ViewportPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if _, err := deps.Loop.SetViewport(c.UserContext(), patch); err != nil {
			if errors.Is(err, domain.ErrInvalidViewport) {
				return errInvalidViewport(c, err.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(viewportState(deps))
	}
}

// SetRotationHandler enables or disables auto-rotation.
func SetRotationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rotationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Enabled == nil {
			return errBadRequest(c, "enabled is required")
		}
		return c.JSON(rotationResponse{Enabled: deps.Loop.SetRotate(c.UserContext(), *req.Enabled)})
	}
}

func ToggleRotationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(rotationResponse{Enabled: deps.Loop.ToggleRotate(c.UserContext())})
	}
}

// TrailHandler returns the recorded path of one drone.
func TrailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Tracks == nil {
			return errUnavailable(c, "track store not configured")
		}
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "drone id is required")
		}
		trail, err := deps.Tracks.Trail(c.UserContext(), id, c.QueryInt("limit", usecases.DefaultTrailLimit))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(trail)
	}
}

// HistoryHandler lists recorded snapshot summaries, newest first.
func HistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Tracks == nil {
			return errUnavailable(c, "track store not configured")
		}
		offset, limit := parsePage(c, 100, 500)
		sums, total, err := deps.Tracks.History(c.UserContext(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sums, Pagination: pg})
	}
}
