package handler

import (
	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/service"
	"DateServer/consts"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/logger"
	"DateServer/pkg/result"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 用户资料处理器
type ProfileHandler struct {
	profileService service.IProfileService
}

// NewProfileHandler 创建用户资料处理器
func NewProfileHandler(profileService service.IProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetMe 获取本人资料接口
// @Summary 获取本人资料
// @Tags 用户资料接口
// @Produce json
// @Success 200 {object} dto.Profile
// @Router /api/v1/user/me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetMe(ctx, userID)
	if err != nil {
		replyError(ctx, c, "获取本人资料服务内部错误", err)
		return
	}

	result.Success(c, profile)
}

// UpdateProfile 更新资料接口
// @Summary 更新姓名、兴趣与外部链接
// @Tags 用户资料接口
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "资料"
// @Success 200 {object} dto.Profile
// @Router /api/v1/auth/update-profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	profile, err := h.profileService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		replyError(ctx, c, "更新资料服务内部错误", err)
		return
	}

	result.Success(c, profile)
}

// UpdateDetails 更新详细资料接口
// @Summary 更新年龄、性别、身高、所在地等详细资料
// @Tags 用户资料接口
// @Accept json
// @Produce json
// @Param request body dto.UpdateDetailsRequest true "详细资料"
// @Success 200 {object} dto.Profile
// @Router /api/v1/user/details [put]
func (h *ProfileHandler) UpdateDetails(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	profile, err := h.profileService.UpdateDetails(ctx, userID, &req)
	if err != nil {
		replyError(ctx, c, "更新详细资料服务内部错误", err)
		return
	}

	result.Success(c, profile)
}

// UpdateShows 更新剧集接口
// @Summary 覆盖更新喜欢的剧集列表
// @Tags 用户资料接口
// @Accept json
// @Produce json
// @Param request body dto.UpdateShowsRequest true "剧集列表"
// @Success 200 {object} dto.Profile
// @Router /api/v1/user/shows [put]
func (h *ProfileHandler) UpdateShows(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateShowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	profile, err := h.profileService.UpdateShows(ctx, userID, &req)
	if err != nil {
		replyError(ctx, c, "更新剧集服务内部错误", err)
		return
	}

	result.Success(c, profile)
}

// UploadPoster 上传海报接口
// @Summary 上传剧集海报到对象存储
// @Tags 用户资料接口
// @Accept multipart/form-data
// @Produce json
// @Param poster formData file true "海报图片"
// @Success 200 {object} dto.UploadPosterResponse
// @Router /api/v1/user/poster [post]
func (h *ProfileHandler) UploadPoster(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	// 1. 解析上传的文件
	file, header, err := c.Request.FormFile("poster")
	if err != nil {
		logger.Warn(ctx, "无法读取上传的文件",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeParamError)
		return
	}
	defer file.Close()

	// 2. 大小与类型由上传组件校验
	resp, err := h.profileService.UploadPoster(ctx, userID, file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		replyError(ctx, c, "上传海报服务内部错误", err)
		return
	}

	result.Success(c, resp)
}

// GetCard 获取用户名片接口
// @Summary 获取用户名片（姓名与认证状态）
// @Tags 用户资料接口
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} model.UserCard
// @Router /api/v1/user/{id}/card [get]
func (h *ProfileHandler) GetCard(c *gin.Context) {
	ctx := ctxmeta.FromGin(c)

	targetID := c.Param("id")
	if targetID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	card, err := h.profileService.GetCard(ctx, targetID)
	if err != nil {
		replyError(ctx, c, "获取用户名片服务内部错误", err)
		return
	}

	result.Success(c, card)
}
