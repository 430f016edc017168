package api_client

import (
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/handler"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/middleware"
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"
)

var (
	apiVersionHeader = fizz.Header(
		"API-Version",
		"De API-versie van de response",
		"", // lege string betekent: primitive string in het OpenAPI document
	)

	notFoundResponse = fizz.Response(
		"404",
		"Not Found",
		nil, // geen inline schema
		nil, // geen content-media-type
		nil, // geen extra headers
	)

	badRequestResponse = fizz.Response("400", "Bad Request", nil, nil, nil)

	payloadTooLargeResponse = fizz.Response("413", "Payload Too Large", nil, nil, nil)
)

// Controllers groups the handlers the router wires up.
type Controllers struct {
	Images *handler.ImagesAPIController
	Badges *handler.BadgesAPIController
	Auth   *middleware.Authenticator
}

func NewRouter(apiVersion string, c Controllers) *fizz.Fizz {
	// 0) Gin + Fizz init
	g := gin.Default()
	g.Use(middleware.RequestID())
	g.Use(APIVersionMiddleware(apiVersion))
	f := fizz.NewFromEngine(g)

	// 1) Voeg je Server-url toe (inclusief version path)
	f.Generator().SetServers([]*openapi.Server{
		{
			URL:         "https://api.developer.overheid.nl/image-register/v1",
			Description: "Production",
		},
	})

	// 2) Definieer je API-Version header in de global components
	gen := f.Generator()
	gen.API().Components.Headers["API-Version"] = &openapi.HeaderOrRef{
		Header: &openapi.Header{
			Description: "De API-versie van de response",
			Schema: &openapi.SchemaOrRef{
				Schema: &openapi.Schema{
					Type: "string",
				},
			},
		},
	}

	// 3) Basis-info van je API
	info := &openapi.Info{
		Title:       "Image register API v1",
		Description: "Auditeerbare opslag van badge-afbeeldingen",
		Version:     apiVersion,
		Contact: &openapi.Contact{
			Name:  "Team developer.overheid.nl",
			Email: "developer@overheid.nl",
			URL:   "https://developer.overheid.nl",
		},
	}

	root := f.Group("/v1", "API v1", "Image register V1 routes")

	// 4a) Alleen-lezen endpoints
	read := root.Group("", "Lezen", "Alleen lezen endpoints", c.Auth.RequireAccess("images:read"))
	read.GET("/images",
		[]fizz.OperationOption{
			fizz.Summary("Alle images ophalen"),
			apiVersionHeader,
		},
		tonic.Handler(c.Images.ListImages, 200),
	)

	read.GET("/images/:hash",
		[]fizz.OperationOption{
			fizz.Summary("Specifieke image ophalen"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Images.RetrieveImage, 200),
	)

	read.GET("/images/:hash/data",
		[]fizz.OperationOption{
			fizz.Summary("Binaire inhoud van een image ophalen"),
			apiVersionHeader,
			notFoundResponse,
		},
		c.Images.RetrieveImageData,
	)

	read.GET("/images/:hash/badges",
		[]fizz.OperationOption{
			fizz.Summary("Badges die naar een image verwijzen"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Images.ListImageBadges, 200),
	)

	read.GET("/audit/images",
		[]fizz.OperationOption{
			fizz.Summary("Mutaties per actor sinds een tijdstip"),
			apiVersionHeader,
			badRequestResponse,
		},
		tonic.Handler(c.Images.ActivitySummary, 200),
	)

	// 4b) Schrijf-endpoints
	write := root.Group("", "Schrijven", "Bewerken van images en badges", c.Auth.RequireAccess("images:write"))
	write.POST("/images",
		[]fizz.OperationOption{
			fizz.Summary("Registreer een nieuwe image"),
			apiVersionHeader,
			badRequestResponse,
			payloadTooLargeResponse,
		},
		tonic.Handler(c.Images.CreateImage, 201),
	)

	write.PATCH("/images/:hash",
		[]fizz.OperationOption{
			fizz.Summary("Corrigeer filename, mime of data van een image"),
			apiVersionHeader,
			badRequestResponse,
			notFoundResponse,
			payloadTooLargeResponse,
		},
		tonic.Handler(c.Images.UpdateImage, 200),
	)

	write.DELETE("/images/:hash",
		[]fizz.OperationOption{
			fizz.Summary("Markeer een image als verwijderd"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Images.DeleteImage, 204),
	)

	write.POST("/badges",
		[]fizz.OperationOption{
			fizz.Summary("Koppel een nieuwe badge aan een image"),
			apiVersionHeader,
			badRequestResponse,
			notFoundResponse,
		},
		tonic.Handler(c.Badges.CreateBadge, 201),
	)

	// 5) OpenAPI documentatie
	f.GET("/v1/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
