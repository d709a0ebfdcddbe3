package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
)

// colorField resolves an RGB value to a list of three ints.
func colorField(get func(src interface{}) (domain.RGB, bool)) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(graphql.Int),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			rgb, ok := get(p.Source)
			if !ok {
				return nil, nil
			}
			return []int{int(rgb[0]), int(rgb[1]), int(rgb[2])}, nil
		},
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"longitude": &graphql.Field{Type: graphql.Float},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"zoom":      &graphql.Field{Type: graphql.Float},
			"minZoom":   &graphql.Field{Type: graphql.Float},
			"maxZoom":   &graphql.Field{Type: graphql.Float},
			"pitch":     &graphql.Field{Type: graphql.Float},
			"bearing":   &graphql.Field{Type: graphql.Float},
			"width":     &graphql.Field{Type: graphql.Int},
			"height":    &graphql.Field{Type: graphql.Int},
			"mapStyle":  &graphql.Field{Type: graphql.String},
		},
	})

	requestType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RideRequest",
		Fields: graphql.Fields{
			"request_id":     &graphql.Field{Type: graphql.String},
			"time_requested": &graphql.Field{Type: graphql.String},
			"from_port":      &graphql.Field{Type: graphql.String},
			"to_port":        &graphql.Field{Type: graphql.String},
			"team_id":        &graphql.Field{Type: graphql.String},
			"state":          &graphql.Field{Type: graphql.String},
			"from_latitude":  &graphql.Field{Type: graphql.Float},
			"from_longitude": &graphql.Field{Type: graphql.Float},
			"to_latitude":    &graphql.Field{Type: graphql.Float},
			"to_longitude":   &graphql.Field{Type: graphql.Float},
			"assigned": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, _ := p.Source.(domain.RideRequest)
					return r.Assigned(), nil
				},
			},
			"color": colorField(func(src interface{}) (domain.RGB, bool) {
				r, ok := src.(domain.RideRequest)
				return r.Color, ok
			}),
		},
	})

	droneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Drone",
		Fields: graphql.Fields{
			"drone_id":     &graphql.Field{Type: graphql.String},
			"team_id":      &graphql.Field{Type: graphql.String},
			"time_stamp":   &graphql.Field{Type: graphql.String},
			"latitude":     &graphql.Field{Type: graphql.Float},
			"longitude":    &graphql.Field{Type: graphql.Float},
			"altitude":     &graphql.Field{Type: graphql.Float},
			"velocity":     &graphql.Field{Type: graphql.Float},
			"k_passengers": &graphql.Field{Type: graphql.Int},
			"battery_left": &graphql.Field{Type: graphql.Float},
			"fulfilling":   &graphql.Field{Type: graphql.String},
			"is_physical":  &graphql.Field{Type: graphql.Boolean},
			"icon":         &graphql.Field{Type: graphql.String},
			"size":         &graphql.Field{Type: graphql.Int},
			"color": colorField(func(src interface{}) (domain.RGB, bool) {
				d, ok := src.(domain.DroneState)
				return d.Color, ok
			}),
		},
	})

	vertiportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vertiport",
		Fields: graphql.Fields{
			"port_id":   &graphql.Field{Type: graphql.String},
			"port_name": &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"altitude":  &graphql.Field{Type: graphql.Float},
			"waiting":   &graphql.Field{Type: graphql.Int},
			"color": colorField(func(src interface{}) (domain.RGB, bool) {
				v, ok := src.(domain.Vertiport)
				return v.Color, ok
			}),
		},
	})

	countType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RequestCount",
		Fields: graphql.Fields{
			"from_port":      &graphql.Field{Type: graphql.String},
			"to_port":        &graphql.Field{Type: graphql.String},
			"from_port_name": &graphql.Field{Type: graphql.String},
			"to_port_name":   &graphql.Field{Type: graphql.String},
			"count":          &graphql.Field{Type: graphql.Int},
		},
	})

	snapshotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Snapshot",
		Fields: graphql.Fields{
			"seq":          &graphql.Field{Type: graphql.Int},
			"generated_at": &graphql.Field{Type: graphql.DateTime},
			"requests":     &graphql.Field{Type: graphql.NewList(requestType)},
			"drones":       &graphql.Field{Type: graphql.NewList(droneType)},
			"counts":       &graphql.Field{Type: graphql.NewList(countType)},
			"vertiports":   &graphql.Field{Type: graphql.NewList(vertiportType)},
			"viewport":     &graphql.Field{Type: viewportType},
			"icon_scale":   &graphql.Field{Type: graphql.Float},
			"bounds":       &graphql.Field{Type: boundsType},
		},
	})

	legendType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LegendEntry",
		Fields: graphql.Fields{
			"team_id": &graphql.Field{Type: graphql.String},
			"name":    &graphql.Field{Type: graphql.String},
			"color": colorField(func(src interface{}) (domain.RGB, bool) {
				e, ok := src.(domain.LegendEntry)
				return e.Color, ok
			}),
		},
	})

	tableType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Table",
		Fields: graphql.Fields{
			"title":   &graphql.Field{Type: graphql.String},
			"headers": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"rows":    &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.String))},
		},
	})

	trackPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TrackPoint",
		Fields: graphql.Fields{
			"time":         &graphql.Field{Type: graphql.DateTime},
			"seq":          &graphql.Field{Type: graphql.Int},
			"location":     &graphql.Field{Type: geoPointType},
			"altitude":     &graphql.Field{Type: graphql.Float},
			"velocity":     &graphql.Field{Type: graphql.Float},
			"battery_left": &graphql.Field{Type: graphql.Float},
			"k_passengers": &graphql.Field{Type: graphql.Int},
		},
	})

	trailType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trail",
		Fields: graphql.Fields{
			"drone_id":      &graphql.Field{Type: graphql.String},
			"points":        &graphql.Field{Type: graphql.NewList(trackPointType)},
			"length_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	viewportStateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ViewportState",
		Fields: graphql.Fields{
			"viewport":   &graphql.Field{Type: viewportType},
			"rotate":     &graphql.Field{Type: graphql.Boolean},
			"icon_scale": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"snapshot": &graphql.Field{
				Type:        snapshotType,
				Description: "Latest published snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Loop.Current(), nil
				},
			},
			"legend": &graphql.Field{
				Type:        graphql.NewList(legendType),
				Description: "Team colors",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Loop.Palette().Legend(), nil
				},
			},
			"viewport": &graphql.Field{
				Type:        viewportStateType,
				Description: "Live camera and rotation switch",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return viewportState(deps), nil
				},
			},
			"metricsView": &graphql.Field{
				Type:        graphql.NewList(tableType),
				Description: "Tabular metrics view of the latest snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return usecases.MetricsView(deps.Loop.Current(), deps.Loop.Palette()), nil
				},
			},
			"trail": &graphql.Field{
				Type:        trailType,
				Description: "Recorded path of a drone",
				Args: graphql.FieldConfigArgument{
					"drone_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: usecases.DefaultTrailLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Tracks == nil {
						return nil, errors.New("track store not configured")
					}
					id := p.Args["drone_id"].(string)
					limit := p.Args["limit"].(int)
					return deps.Tracks.Trail(p.Context, id, limit)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"setViewport": &graphql.Field{
				Type:        viewportStateType,
				Description: "Apply a partial camera change",
				Args: graphql.FieldConfigArgument{
					"longitude": &graphql.ArgumentConfig{Type: graphql.Float},
					"latitude":  &graphql.ArgumentConfig{Type: graphql.Float},
					"zoom":      &graphql.ArgumentConfig{Type: graphql.Float},
					"pitch":     &graphql.ArgumentConfig{Type: graphql.Float},
					"bearing":   &graphql.ArgumentConfig{Type: graphql.Float},
					"width":     &graphql.ArgumentConfig{Type: graphql.Int},
					"height":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var patch domain.ViewportPatch
					patch.Longitude = floatArg(p.Args, "longitude")
					patch.Latitude = floatArg(p.Args, "latitude")
					patch.Zoom = floatArg(p.Args, "zoom")
					patch.Pitch = floatArg(p.Args, "pitch")
					patch.Bearing = floatArg(p.Args, "bearing")
					patch.Width = intArg(p.Args, "width")
					patch.Height = intArg(p.Args, "height")
					if _, err := deps.Loop.SetViewport(p.Context, patch); err != nil {
						return nil, err
					}
					return viewportState(deps), nil
				},
			},
			"setRotation": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"enabled": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Boolean)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Loop.SetRotate(p.Context, p.Args["enabled"].(bool)), nil
				},
			},
			"toggleRotation": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Loop.ToggleRotate(p.Context), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func floatArg(args map[string]interface{}, name string) *float64 {
	if v, ok := args[name].(float64); ok {
		return &v
	}
	return nil
}

func intArg(args map[string]interface{}, name string) *int {
	if v, ok := args[name].(int); ok {
		return &v
	}
	return nil
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		start := time.Now()
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		if result.HasErrors() {
			LoggerFromCtx(c.UserContext()).Warn("graphql errors",
				"operation", req.OperationName, "errors", len(result.Errors),
				"first", result.Errors[0].Message, "latency", time.Since(start))
		}

		return c.JSON(result)
	}
}
