package handler

import (
	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/service"
	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// MatchHandler 发现页与配对处理器
type MatchHandler struct {
	discoverService service.IDiscoverService
	matchService    service.IMatchService
}

// NewMatchHandler 创建配对处理器
func NewMatchHandler(discoverService service.IDiscoverService, matchService service.IMatchService) *MatchHandler {
	return &MatchHandler{
		discoverService: discoverService,
		matchService:    matchService,
	}
}

// Discover 发现页接口
// @Summary 按条件分页查询候选人
// @Tags 配对接口
// @Produce json
// @Param minAge query int false "最小年龄"
// @Param maxAge query int false "最大年龄"
// @Param gender query string false "性别"
// @Param bodyType query string false "体型"
// @Param location query string false "所在地"
// @Param page query int false "页码(默认1)"
// @Param size query int false "每页数量(默认20)"
// @Success 200 {object} dto.DiscoverResponse
// @Router /api/v1/discover [get]
func (h *MatchHandler) Discover(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.DiscoverRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	if req.MinAge > 0 && req.MaxAge > 0 && req.MinAge > req.MaxAge {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.discoverService.Discover(ctx, userID, &req)
	if err != nil {
		replyError(ctx, c, "发现页服务内部错误", err)
		return
	}

	result.Success(c, resp)
}

// Like 喜欢用户接口
// @Summary 喜欢一个用户，双向喜欢时配对成功
// @Tags 配对接口
// @Produce json
// @Param id path string true "被喜欢的用户ID"
// @Success 200 {object} dto.LikeResponse
// @Router /api/v1/like/{id} [post]
func (h *MatchHandler) Like(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	likedID := c.Param("id")
	if likedID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.matchService.Like(ctx, userID, likedID)
	if err != nil {
		replyError(ctx, c, "喜欢用户服务内部错误", err)
		return
	}

	result.SuccessWithMessage(c, resp, resp.Message)
}

// ListMatches 配对列表接口
// @Summary 获取配对列表
// @Tags 配对接口
// @Produce json
// @Success 200 {object} dto.ListMatchesResponse
// @Router /api/v1/matches [get]
func (h *MatchHandler) ListMatches(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := h.matchService.ListMatches(ctx, userID)
	if err != nil {
		replyError(ctx, c, "获取配对列表服务内部错误", err)
		return
	}

	result.Success(c, resp)
}

// ListLikes 喜欢我的用户列表接口
// @Summary 获取喜欢我、等待我回应的用户
// @Tags 配对接口
// @Produce json
// @Success 200 {object} dto.ListLikesResponse
// @Router /api/v1/likes [get]
func (h *MatchHandler) ListLikes(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := h.matchService.ListLikes(ctx, userID)
	if err != nil {
		replyError(ctx, c, "获取喜欢列表服务内部错误", err)
		return
	}

	result.Success(c, resp)
}
