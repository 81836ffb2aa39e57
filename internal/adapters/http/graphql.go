package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/madar/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	pathPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathPoint",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"order":    &graphql.Field{Type: graphql.Int},
		},
	})

	interventionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Intervention",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"type":           &graphql.Field{Type: graphql.String},
			"media_type":     &graphql.Field{Type: graphql.String},
			"title":          &graphql.Field{Type: graphql.String},
			"place":          &graphql.Field{Type: graphql.String},
			"location":       &graphql.Field{Type: geoPointType},
			"status":         &graphql.Field{Type: graphql.String},
			"interact_count": &graphql.Field{Type: graphql.Int},
			"media_url":      &graphql.Field{Type: graphql.String},
			"audio_url":      &graphql.Field{Type: graphql.String},
			"path_points":    &graphql.Field{Type: graphql.NewList(pathPointType)},
			"themes":         &graphql.Field{Type: graphql.NewList(graphql.String)},
			"curator_notes":  &graphql.Field{Type: graphql.String},
			"last_updated":   &graphql.Field{Type: graphql.DateTime},
			"created_at":     &graphql.Field{Type: graphql.DateTime},
		},
	})

	tourType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tour",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"stops":       &graphql.Field{Type: graphql.NewList(graphql.String)},
			"theme":       &graphql.Field{Type: graphql.String},
			"is_official": &graphql.Field{Type: graphql.Boolean},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	planePointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanePoint",
		Fields: graphql.Fields{
			"nx": &graphql.Field{Type: graphql.Float},
			"ny": &graphql.Field{Type: graphql.Float},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapMarker",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"nx":         &graphql.Field{Type: graphql.Float},
			"ny":         &graphql.Field{Type: graphql.Float},
			"type":       &graphql.Field{Type: graphql.String},
			"label":      &graphql.Field{Type: graphql.String},
			"route_id":   &graphql.Field{Type: graphql.String},
			"path_point": &graphql.Field{Type: graphql.Boolean},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapRoute",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"polyline": &graphql.Field{Type: graphql.NewList(planePointType)},
			"length_m": &graphql.Field{Type: graphql.Float},
		},
	})

	// Extent embeds Bounds, which the default resolver does not see through.
	extentField := func(get func(e *domain.Extent) float64) *graphql.Field {
		return &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if e, ok := p.Source.(*domain.Extent); ok {
					return get(e), nil
				}
				return nil, nil
			},
		}
	}
	extentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapExtent",
		Fields: graphql.Fields{
			"min_lat":   extentField(func(e *domain.Extent) float64 { return e.MinLat }),
			"min_lon":   extentField(func(e *domain.Extent) float64 { return e.MinLon }),
			"max_lat":   extentField(func(e *domain.Extent) float64 { return e.MaxLat }),
			"max_lon":   extentField(func(e *domain.Extent) float64 { return e.MaxLon }),
			"lat_range": extentField(func(e *domain.Extent) float64 { return e.LatRange }),
			"lon_range": extentField(func(e *domain.Extent) float64 { return e.LonRange }),
		},
	})

	mapViewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapView",
		Fields: graphql.Fields{
			"markers": &graphql.Field{Type: graphql.NewList(markerType)},
			"routes":  &graphql.Field{Type: graphql.NewList(routeType)},
			"extent":  &graphql.Field{Type: extentType},
		},
	})

	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"interventions": &graphql.Field{
				Type:        graphql.NewList(interventionType),
				Description: "List interventions, optionally filtered",
				Args: graphql.FieldConfigArgument{
					"type":   &graphql.ArgumentConfig{Type: graphql.String},
					"status": &graphql.ArgumentConfig{Type: graphql.String},
					"theme":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var f domain.InterventionFilter
					if v, ok := p.Args["type"].(string); ok {
						f.Type = domain.InterventionType(v)
					}
					if v, ok := p.Args["status"].(string); ok {
						f.Status = domain.InterventionStatus(v)
					}
					if v, ok := p.Args["theme"].(string); ok {
						f.Theme = domain.TourTheme(v)
					}
					return deps.Interventions.List(p.Context, f)
				},
			},
			"intervention": &graphql.Field{
				Type:        interventionType,
				Description: "Get an intervention by ID",
				Args:        idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Interventions.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"tours": &graphql.Field{
				Type:        graphql.NewList(tourType),
				Description: "List curated tours",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tours.List(p.Context)
				},
			},
			"tour": &graphql.Field{
				Type:        tourType,
				Description: "Get a tour by ID",
				Args:        idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tours.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"mapView": &graphql.Field{
				Type:        mapViewType,
				Description: "All interventions on the normalized plane",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Map.View(p.Context)
				},
			},
			"tourMapView": &graphql.Field{
				Type:        mapViewType,
				Description: "A tour's stops on the normalized plane",
				Args:        idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Map.TourView(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
