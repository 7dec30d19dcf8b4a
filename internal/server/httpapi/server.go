// Package httpapi exposes the account service as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avolkovs/accountd/internal/logging"
	"github.com/avolkovs/accountd/internal/server/models"
	"github.com/avolkovs/accountd/internal/server/services"
	"github.com/gin-gonic/gin"
)

// accountSvc is the slice of the account service the HTTP layer uses.
type accountSvc interface {
	Register(ctx context.Context, req *services.RegisterRequest) (string, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	ListActive(ctx context.Context) []*models.Account
	GetByID(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Deactivate(ctx context.Context, id string) error
}

type Server struct {
	address   string
	accounts  accountSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, as *services.AccountService, secretKey string) (*Server, error) {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		accounts:  as,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ping", s.ping)

	api := r.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.POST("/token/refresh", s.refresh)

	authed := api.Group("/accounts", s.authMiddleware())
	authed.GET("", s.listAccounts)
	authed.GET("/:id", s.getAccount)
	authed.PUT("/:id", s.updateAccount)
	authed.DELETE("/:id", s.deactivateAccount)

	return r
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
