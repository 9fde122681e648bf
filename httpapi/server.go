package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/catalog"
	"github.com/librarium/librarium/lending"
	"github.com/librarium/librarium/storage"
)

// Server wires the services into a gin router.
type Server struct {
	catalog *catalog.Service
	lending *lending.Service
	auth    *auth.Service
	logger  storage.Logger
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets the logger for the Server.
func WithLogger(logger storage.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the REST surface over the given services.
func NewServer(catalogSvc *catalog.Service, lendingSvc *lending.Service, authSvc *auth.Service, options ...Option) *Server {
	s := &Server{
		catalog: catalogSvc,
		lending: lendingSvc,
		auth:    authSvc,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Router builds the route table. Catalog reads are public; everything else
// sits behind the bearer middleware and a capability check.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), s.authenticate())

	engine.POST("/auth/register", s.handleRegister)
	engine.POST("/auth/login", s.handleLogin)
	engine.POST("/auth/logout", s.handleLogout)
	engine.GET("/auth/me", s.handleMe)

	engine.GET("/books", s.handleSearchBooks)
	engine.GET("/books/:isbn", s.handleGetBook)
	engine.POST("/books", s.require(auth.ActionManageCatalog), s.handleCreateBook)
	engine.POST("/books/import", s.require(auth.ActionManageCatalog), s.handleImportBook)
	engine.PUT("/books/:isbn", s.require(auth.ActionManageCatalog), s.handleUpdateBook)
	engine.DELETE("/books/:isbn", s.require(auth.ActionManageCatalog), s.handleDeleteBook)

	engine.GET("/authors", s.handleListAuthors)
	engine.POST("/authors", s.require(auth.ActionManageCatalog), s.handleCreateAuthor)
	engine.PUT("/authors/:id", s.require(auth.ActionManageCatalog), s.handleRenameAuthor)
	engine.DELETE("/authors/:id", s.require(auth.ActionManageCatalog), s.handleDeleteAuthor)

	engine.GET("/categories", s.handleListCategories)
	engine.POST("/categories", s.require(auth.ActionManageCatalog), s.handleCreateCategory)
	engine.PUT("/categories/:id", s.require(auth.ActionManageCatalog), s.handleRenameCategory)
	engine.DELETE("/categories/:id", s.require(auth.ActionManageCatalog), s.handleDeleteCategory)

	engine.POST("/borrows", s.require(auth.ActionBorrow), s.handleBorrow)
	engine.POST("/borrows/:id/return", s.require(auth.ActionViewOwnLoans), s.handleReturn)
	engine.GET("/borrows/user", s.require(auth.ActionViewOwnLoans), s.handleOwnLoans)
	engine.GET("/borrows/unreturned", s.require(auth.ActionManageLoans), s.handleOpenLoans)
	engine.GET("/borrows/:id", s.require(auth.ActionManageLoans), s.handleGetLoan)
	engine.GET("/borrows", s.require(auth.ActionManageLoans), s.handleAllLoans)

	engine.GET("/users", s.require(auth.ActionManageMembers), s.handleListUsers)
	engine.POST("/users", s.require(auth.ActionManageMembers), s.handleCreateUser)
	engine.GET("/users/:id", s.require(auth.ActionManageMembers), s.handleGetUser)
	engine.PUT("/users/:id", s.require(auth.ActionManageMembers), s.handleUpdateUser)
	engine.DELETE("/users/:id", s.require(auth.ActionManageMembers), s.handleDeleteUser)

	return engine
}
