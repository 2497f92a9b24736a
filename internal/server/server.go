package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sort"
	"time"

	"anoa.com/rickmortyapi/internal/config"
	"anoa.com/rickmortyapi/internal/middleware"
	"anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/storage"

	adminHttp "anoa.com/rickmortyapi/internal/modules/admin/delivery/http"

	characterHttp "anoa.com/rickmortyapi/internal/modules/character/delivery/http"
	characterRepo "anoa.com/rickmortyapi/internal/modules/character/repository"
	characterService "anoa.com/rickmortyapi/internal/modules/character/service"

	episodeHttp "anoa.com/rickmortyapi/internal/modules/episode/delivery/http"
	episodeRepo "anoa.com/rickmortyapi/internal/modules/episode/repository"
	episodeService "anoa.com/rickmortyapi/internal/modules/episode/service"

	favoriteHttp "anoa.com/rickmortyapi/internal/modules/favorite/delivery/http"
	favoriteRepo "anoa.com/rickmortyapi/internal/modules/favorite/repository"
	favoriteService "anoa.com/rickmortyapi/internal/modules/favorite/service"

	locationHttp "anoa.com/rickmortyapi/internal/modules/location/delivery/http"
	locationRepo "anoa.com/rickmortyapi/internal/modules/location/repository"
	locationService "anoa.com/rickmortyapi/internal/modules/location/service"

	searchHttp "anoa.com/rickmortyapi/internal/modules/search/delivery/http"
	searchService "anoa.com/rickmortyapi/internal/modules/search/service"

	userHttp "anoa.com/rickmortyapi/internal/modules/user/delivery/http"
	userRepo "anoa.com/rickmortyapi/internal/modules/user/repository"
	userService "anoa.com/rickmortyapi/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the connections the server is built on. Redis, Meili and Images
// are optional; leave them nil when not configured.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Meili  searchService.MeiliSearchService
	Images storage.ImageStorage
}

type Server struct {
	engine          *gin.Engine
	httpServer      *http.Server
	searchSvc       searchService.SearchService
	favoriteHandler *favoriteHttp.FavoriteHandler
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	db := deps.DB

	binding.EnableDecoderDisallowUnknownFields = true

	var indexer searchService.Indexer
	if deps.Meili != nil {
		indexer = deps.Meili
	}

	userRepository := userRepo.NewUserRepository(db)
	limiter := userService.NewLoginLimiter(deps.Redis, cfg.LoginMaxAttempts, cfg.LoginLockoutWindow)
	userSvc := userService.NewUserService(userRepository)
	authSvc := userService.NewAuthService(userRepository, limiter, cfg.JWTSecret, cfg.JWTTTL)
	userHandler := userHttp.NewUserHandler(userSvc)
	authHandler := userHttp.NewAuthHandler(authSvc)

	locationRepository := locationRepo.NewLocationRepository(db)
	locationSvc := locationService.NewLocationService(locationRepository, indexer)
	locationHandler := locationHttp.NewLocationHandler(locationSvc)

	characterRepository := characterRepo.NewCharacterRepository(db)
	characterSvc := characterService.NewCharacterService(characterRepository, indexer, deps.Images, cfg.CloudinaryUploadFolder)
	characterHandler := characterHttp.NewCharacterHandler(characterSvc)

	episodeRepository := episodeRepo.NewEpisodeRepository(db)
	episodeSvc := episodeService.NewEpisodeService(episodeRepository, indexer)
	episodeHandler := episodeHttp.NewEpisodeHandler(episodeSvc)

	favoriteRepository := favoriteRepo.NewFavoriteRepository(db)
	favoriteSvc := favoriteService.NewFavoriteService(favoriteRepository, userRepository, favoriteService.NewEventPublisher(deps.Redis))
	favoriteHandler := favoriteHttp.NewFavoriteHandler(favoriteSvc, deps.Redis)

	searchSvc := searchService.NewSearchService(deps.Meili, characterRepository, episodeRepository, locationRepository)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	adminHandler := adminHttp.NewAdminHandler(userSvc, favoriteSvc, searchSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/users/:id/favorites/ws"))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)
	requireAuth := authMiddleware.RequireAuth()

	router.GET("/", sitemap(router))
	router.GET("/search", searchHandler.Search)

	// Accounts
	router.GET("/users", userHandler.ListUsers)
	router.GET("/users/:id", userHandler.GetUser)
	router.POST("/users", userHandler.CreateUser)
	router.PUT("/users/:id", userHandler.UpdateUser)
	router.DELETE("/users/:id", userHandler.DeleteUser)
	router.POST("/login", authHandler.Login)
	router.GET("/infoperfil", requireAuth, authHandler.Profile)

	// Favorites
	router.GET("/users/:id/favorites", favoriteHandler.ListUserFavorites)
	router.POST("/users/:id/favorites", requireAuth, favoriteHandler.CreateUserFavorite)
	router.DELETE("/users/:id/favorites/:fid", favoriteHandler.DeleteUserFavorite)
	router.GET("/users/:id/favorites/ws", requireAuth, favoriteHandler.StreamFavorites)
	router.GET("/favorites", favoriteHandler.ListFavorites)
	router.POST("/favorites", requireAuth, favoriteHandler.CreateFavorite)

	// Catalog
	characters := router.Group("/characters")
	{
		characters.GET("", characterHandler.ListCharacters)
		characters.GET("/:id", characterHandler.GetCharacter)
		characters.POST("", requireAuth, characterHandler.CreateCharacter)
		characters.PUT("/:id", requireAuth, characterHandler.UpdateCharacter)
		characters.DELETE("/:id", requireAuth, characterHandler.DeleteCharacter)
		characters.POST("/:id/image", requireAuth, characterHandler.UploadImage)
	}

	episodes := router.Group("/episodes")
	{
		episodes.GET("", episodeHandler.ListEpisodes)
		episodes.GET("/:id", episodeHandler.GetEpisode)
		episodes.POST("", requireAuth, episodeHandler.CreateEpisode)
		episodes.PUT("/:id", requireAuth, episodeHandler.UpdateEpisode)
		episodes.DELETE("/:id", requireAuth, episodeHandler.DeleteEpisode)
	}

	locations := router.Group("/locations")
	{
		locations.GET("", locationHandler.ListLocations)
		locations.GET("/:id", locationHandler.GetLocation)
		locations.POST("", requireAuth, locationHandler.CreateLocation)
		locations.PUT("/:id", requireAuth, locationHandler.UpdateLocation)
		locations.DELETE("/:id", requireAuth, locationHandler.DeleteLocation)
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(requireAuth, authMiddleware.RequireAdmin())
	{
		adminGroup.GET("/users", adminHandler.GetAllUsers)
		adminGroup.GET("/users/:id", adminHandler.GetUser)
		adminGroup.POST("/users", adminHandler.CreateUser)
		adminGroup.PUT("/users/:id", adminHandler.UpdateUser)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

		adminGroup.POST("/characters", characterHandler.CreateCharacter)
		adminGroup.PUT("/characters/:id", characterHandler.UpdateCharacter)
		adminGroup.DELETE("/characters/:id", characterHandler.DeleteCharacter)
		adminGroup.POST("/episodes", episodeHandler.CreateEpisode)
		adminGroup.PUT("/episodes/:id", episodeHandler.UpdateEpisode)
		adminGroup.DELETE("/episodes/:id", episodeHandler.DeleteEpisode)
		adminGroup.POST("/locations", locationHandler.CreateLocation)
		adminGroup.PUT("/locations/:id", locationHandler.UpdateLocation)
		adminGroup.DELETE("/locations/:id", locationHandler.DeleteLocation)

		adminGroup.GET("/favorites", adminHandler.GetAllFavorites)
		adminGroup.POST("/favorites", adminHandler.CreateFavorite)
		adminGroup.DELETE("/favorites/:id", adminHandler.DeleteFavorite)

		adminGroup.POST("/search/reindex", adminHandler.Reindex)
	}

	return &Server{
		engine: router,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		searchSvc:       searchSvc,
		favoriteHandler: favoriteHandler,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) SearchService() searchService.SearchService {
	return s.searchSvc
}

// Start serves on the configured port until Shutdown is called.
func (s *Server) Start() error {
	logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes event streams and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.favoriteHandler.Close()
	return s.httpServer.Shutdown(ctx)
}

func sitemap(router *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := router.Routes()
		out := make([]dto.RouteInfo, 0, len(routes))
		for _, r := range routes {
			out = append(out, dto.RouteInfo{Method: r.Method, Path: r.Path})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Path != out[j].Path {
				return out[i].Path < out[j].Path
			}
			return out[i].Method < out[j].Method
		})
		c.JSON(http.StatusOK, out)
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	router.Use(cors.New(cfg))
}
