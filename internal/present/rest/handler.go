package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/policy"
	"github.com/hinagata/saas-admin/internal/present/rest/middleware"
	"github.com/hinagata/saas-admin/internal/present/rest/presenter"
	"github.com/hinagata/saas-admin/internal/service"
	"github.com/hinagata/saas-admin/internal/usecase"
)

type Handler struct {
	auth    *service.AuthService
	users   *usecase.UserUsecase
	tenants *usecase.TenantUsecase
	events  *service.EventService
}

func NewHandler(
	auth *service.AuthService,
	users *usecase.UserUsecase,
	tenants *usecase.TenantUsecase,
	events *service.EventService,
) *Handler {
	return &Handler{
		auth:    auth,
		users:   users,
		tenants: tenants,
		events:  events,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, authMw *middleware.AuthMiddleware, loginLimit echo.MiddlewareFunc) {
	if loginLimit != nil {
		e.POST("/auth/login", h.handleLogin, loginLimit)
	} else {
		e.POST("/auth/login", h.handleLogin)
	}

	users := e.Group("/users", authMw.RequireAuth)
	users.GET("", h.handleListUsers)
	users.POST("", h.handleCreateUser)
	users.GET("/:id", h.handleGetUser)
	users.PUT("/:id", h.handleUpdateUser)
	users.DELETE("/:id", h.handleDeleteUser)

	tenants := e.Group("/tenants", authMw.RequireAuth, authMw.Guard(policy.ResourceTenant))
	tenants.GET("", h.handleListTenants)
	tenants.POST("", h.handleCreateTenant)
	tenants.GET("/:id", h.handleGetTenant)
	tenants.PUT("/:id", h.handleUpdateTenant)
	tenants.DELETE("/:id", h.handleDeleteTenant)

	e.GET("/realtime", h.handleRealtime,
		authMw.RequireAuth,
		authMw.RequireRoles(domain.RoleSuperAdmin, domain.RoleTenantAdmin),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	tokenStr, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return presenter.Unauthorized(c)
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, loginResponse{AccessToken: tokenStr})
}

// --- users ---

type userRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	TenantID *int64      `json:"tenantId"`
}

type userUpdateRequest struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Password *string      `json:"password"`
	Role     *domain.Role `json:"role"`
	TenantID *int64       `json:"tenantId"`
}

func (h *Handler) handleListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	users, err := h.users.List(ctx, requester)
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.OKList(c, users)
}

func (h *Handler) handleGetUser(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user id")
	}

	user, err := h.users.Get(ctx, requester, id)
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleCreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Email == "" {
		return presenter.BadRequestMessage(c, "email is required")
	}

	user, err := h.users.Create(ctx, requester, usecase.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		TenantID: req.TenantID,
	})
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.Created(c, user)
}

func (h *Handler) handleUpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user id")
	}

	var req userUpdateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.users.Update(ctx, requester, id, usecase.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		TenantID: req.TenantID,
	})
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.OK(c, user)
}

func (h *Handler) handleDeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid user id")
	}

	if err := h.users.Delete(ctx, requester, id); err != nil {
		return h.presentError(c, err)
	}
	return presenter.OK(c, echo.Map{"deleted": true})
}

// --- tenants ---

type tenantRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleListTenants(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	tenants, err := h.tenants.List(ctx, requester)
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.OKList(c, tenants)
}

func (h *Handler) handleGetTenant(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid tenant id")
	}

	tenant, err := h.tenants.Get(ctx, requester, id)
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.OK(c, tenant)
}

func (h *Handler) handleCreateTenant(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	tenant, err := h.tenants.Create(ctx, requester, req.Name)
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.Created(c, tenant)
}

func (h *Handler) handleUpdateTenant(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid tenant id")
	}

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	tenant, err := h.tenants.Update(ctx, requester, id, req.Name)
	if err != nil {
		return h.presentError(c, err)
	}
	return presenter.OK(c, tenant)
}

func (h *Handler) handleDeleteTenant(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid tenant id")
	}

	if err := h.tenants.Delete(ctx, requester, id); err != nil {
		return h.presentError(c, err)
	}
	return presenter.OK(c, echo.Map{"deleted": true})
}

// --- realtime ---

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ctx := c.Request().Context()
	requester, ok := middleware.RequesterFrom(ctx)
	if !ok {
		return presenter.Unauthorized(c)
	}

	if h.events == nil {
		return presenter.NotFound(c, "realtime stream not available")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"failed to upgrade websocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	output := make(chan domain.Event)
	streamDone := make(chan struct{})
	go func() {
		defer close(streamDone)
		if err := h.events.Stream(ctx, requester, output); err != nil {
			slog.ErrorContext(
				ctx, "event stream terminated",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
	}()

	quit := make(chan struct{})
	go func() {
		defer close(quit)
		for {
			// Clients only send heartbeats; reads mainly detect closes.
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "websocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-streamDone:
			return nil
		case event := <-output:
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}

// presentError maps the domain error taxonomy onto HTTP statuses.
func (h *Handler) presentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return presenter.Unauthorized(c)
	case errors.Is(err, domain.ErrForbidden):
		var perm domain.PermissionError
		errors.As(err, &perm)
		return presenter.Forbidden(c, perm.Reason)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalid):
		return presenter.BadRequestMessage(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}
