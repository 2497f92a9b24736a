package handler

import (
	"net/http"

	"anoa.com/rickmortyapi/internal/modules/episode/dto"
	episode "anoa.com/rickmortyapi/internal/modules/episode/service"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/response"
	"anoa.com/rickmortyapi/pkg/validator"
	"github.com/gin-gonic/gin"
)

type EpisodeHandler struct {
	service episode.EpisodeService
}

func NewEpisodeHandler(service episode.EpisodeService) *EpisodeHandler {
	return &EpisodeHandler{service: service}
}

func (h *EpisodeHandler) ListEpisodes(c *gin.Context) {
	var filter dto.EpisodeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	episodes, err := h.service.ListEpisodes(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, episodes)
}

func (h *EpisodeHandler) GetEpisode(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.GetEpisode(c.Request.Context(), uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *EpisodeHandler) CreateEpisode(c *gin.Context) {
	var req dto.CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.CreateEpisode(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *EpisodeHandler) UpdateEpisode(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var req dto.UpdateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.UpdateEpisode(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *EpisodeHandler) DeleteEpisode(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.DeleteEpisode(c.Request.Context(), uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "episode deleted"})
}
