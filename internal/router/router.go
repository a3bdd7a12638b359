package router

import (
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/config"
	"github.com/mauropillox/chorilocal-sub000/internal/events"
	"github.com/mauropillox/chorilocal-sub000/internal/handler"
	"github.com/mauropillox/chorilocal-sub000/internal/middleware"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"
	"github.com/mauropillox/chorilocal-sub000/internal/service"
	"github.com/mauropillox/chorilocal-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, broadcaster *events.Broadcaster) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, tokenRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	stockSvc := service.NewStockService(productoRepo, pedidoRepo, dispatcher)
	clienteSvc := service.NewClienteService(clienteRepo)
	pedidoSvc := service.NewPedidoService(pedidoRepo, productoRepo, clienteRepo, dispatcher, broadcaster)
	bulkSvc := service.NewBulkService(pedidoRepo, productoRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc, stockSvc)
	pedidosH := handler.NewPedidosHandler(pedidoSvc, bulkSvc, stockSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	eventosH := handler.NewEventosHandler(broadcaster)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, authSvc)
	r.POST("/v1/auth/logout", jwtMW, authH.Logout)

	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: admin, vendedor, repartidor — declared per-endpoint
		todos := middleware.RequireRole("admin", "vendedor", "repartidor")
		gestores := middleware.RequireRole("admin", "vendedor")
		soloAdmin := middleware.RequireRole("admin")

		// Pedidos — vendedores only see their own; scoping happens in the
		// service layer, the router just gates roles.
		pedidos := v1.Group("/pedidos")
		{
			pedidos.POST("", gestores, pedidosH.Crear)
			pedidos.GET("", todos, pedidosH.Listar)
			pedidos.GET("/:id", todos, pedidosH.ObtenerPorID)
			pedidos.PATCH("/:id/estado", todos, pedidosH.CambiarEstado)
			pedidos.PATCH("/:id/notas", gestores, pedidosH.ActualizarNotas)
			pedidos.PATCH("/:id/cliente", gestores, pedidosH.ReasignarCliente)
			pedidos.POST("/:id/items", gestores, pedidosH.AgregarItem)
			pedidos.PUT("/:id/items/:producto_id", gestores, pedidosH.ActualizarItem)
			pedidos.DELETE("/:id/items/:producto_id", gestores, pedidosH.QuitarItem)
			pedidos.DELETE("/:id", gestores, pedidosH.Eliminar)

			pedidos.POST("/bulk-delete", soloAdmin, pedidosH.BulkDelete)
			pedidos.POST("/generar-documentos", gestores, pedidosH.GenerarDocumentos)
			pedidos.POST("/preview-stock", gestores, pedidosH.PreviewStock)
		}

		// Productos — reads for everyone, writes for admin
		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/:id", todos, productosH.ObtenerPorID)
		v1.PATCH("/productos/:id/stock", gestores, productosH.AjustarStock)
		v1.POST("/productos/stock/batch", gestores, productosH.BatchStock)
		prods := v1.Group("/productos", soloAdmin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
		}

		clientes := v1.Group("/clientes", gestores)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", soloAdmin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}

		// SSE stream of order state changes (delivery tracking front end)
		v1.GET("/eventos", todos, eventosH.Stream)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
