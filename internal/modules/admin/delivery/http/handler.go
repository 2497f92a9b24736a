package handler

import (
	"net/http"

	"anoa.com/rickmortyapi/internal/modules/admin/dto"
	favoriteDto "anoa.com/rickmortyapi/internal/modules/favorite/dto"
	favoriteService "anoa.com/rickmortyapi/internal/modules/favorite/service"
	searchService "anoa.com/rickmortyapi/internal/modules/search/service"
	userService "anoa.com/rickmortyapi/internal/modules/user/service"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"anoa.com/rickmortyapi/pkg/response"
	"anoa.com/rickmortyapi/pkg/validator"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the account and favorite operations that only admins
// may perform. Catalog mutations reuse the public handlers under /admin.
type AdminHandler struct {
	userService     userService.UserService
	favoriteService favoriteService.FavoriteService
	searchService   searchService.SearchService
}

func NewAdminHandler(
	userService userService.UserService,
	favoriteService favoriteService.FavoriteService,
	searchService searchService.SearchService,
) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		favoriteService: favoriteService,
		searchService:   searchService,
	}
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input dto.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.userService.AdminCreateUser(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	res, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.userService.GetUser(c.Request.Context(), uri.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var input dto.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.userService.AdminUpdateUser(c.Request.Context(), uri.ID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "user deleted"})
}

func (h *AdminHandler) GetAllFavorites(c *gin.Context) {
	res, err := h.favoriteService.ListAll(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// CreateFavorite creates a favorite for any user, still under the
// consistency checks.
func (h *AdminHandler) CreateFavorite(c *gin.Context) {
	var input favoriteDto.CreateFavoriteWithUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.favoriteService.Create(c.Request.Context(), input.UserID, input.CreateFavoriteRequest)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AdminHandler) DeleteFavorite(c *gin.Context) {
	var uri commonDto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.favoriteService.Delete(c.Request.Context(), uri.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "favorite deleted"})
}

func (h *AdminHandler) Reindex(c *gin.Context) {
	if err := h.searchService.Reindex(c.Request.Context()); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "catalog reindexed"})
}
