package handler

import (
	"net/http"
	"sync"
	"time"

	"anoa.com/rickmortyapi/internal/modules/favorite/dto"
	favorite "anoa.com/rickmortyapi/internal/modules/favorite/service"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/logger"
	"anoa.com/rickmortyapi/pkg/response"
	"anoa.com/rickmortyapi/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type FavoriteHandler struct {
	service     favorite.FavoriteService
	redisClient *redis.Client
	upgrader    websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

// NewFavoriteHandler accepts a nil redis client; the event stream then
// answers 503.
func NewFavoriteHandler(service favorite.FavoriteService, redisClient *redis.Client) *FavoriteHandler {
	return &FavoriteHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		closing: make(chan struct{}),
	}
}

// Close ends every open event stream.
func (h *FavoriteHandler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *FavoriteHandler) ListUserFavorites(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	favorites, err := h.service.ListByUser(c.Request.Context(), uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, favorites)
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, favorites)
}

func (h *FavoriteHandler) CreateUserFavorite(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var req dto.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.CreateForUser(c.Request.Context(), actorID, uri.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *FavoriteHandler) CreateFavorite(c *gin.Context) {
	var req dto.CreateFavoriteWithUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.CreateForUser(c.Request.Context(), actorID, req.UserID, req.CreateFavoriteRequest)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *FavoriteHandler) DeleteUserFavorite(c *gin.Context) {
	var uri commonDto.UserFavoriteRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.DeleteForUser(c.Request.Context(), uri.ID, uri.FavoriteID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "favorite deleted"})
}

// StreamFavorites forwards the user's favorite events over a WebSocket.
func (h *FavoriteHandler) StreamFavorites(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if userID != uri.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "favorite events are not available"})
		return
	}

	ctx := c.Request.Context()
	log := logger.Ctx(ctx)

	pubsub := h.redisClient.Subscribe(ctx, favorite.Channel(userID))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to subscribe to favorite events")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "favorite events are not available"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade websocket")
		return
	}
	defer conn.Close()

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Debug().Err(err).Msg("failed to write favorite event")
				return
			}
		case <-clientClosed:
			return
		case <-h.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		case <-ctx.Done():
			return
		}
	}
}
