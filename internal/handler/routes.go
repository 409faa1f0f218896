package handler

import (
	"github.com/finwise-app/finwise-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers bundles the route handlers for registration
type Handlers struct {
	Account      *AccountHandler
	Budget       *BudgetHandler
	Category     *CategoryHandler
	Expense      *ExpenseHandler
	Income       *IncomeHandler
	Notification *NotificationHandler
	Transaction  *TransactionHandler
	WebSocket    *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	// Swagger UI and raw spec (open)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/swagger/openapi.json", ServeOpenAPISpec)

	// WebSocket endpoint authenticates via its own token handshake
	e.GET("/ws", h.WebSocket.HandleWS)

	// All remaining routes are protected
	api := e.Group("")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Account routes
	api.POST("/add-account", h.Account.CreateAccount)
	api.GET("/get-accounts", h.Account.GetAccounts)
	api.GET("/get-account/:id", h.Account.GetAccount)
	api.PUT("/update-account/:id", h.Account.UpdateAccount)
	api.DELETE("/delete-account/:id", h.Account.DeleteAccount)

	// Budget routes
	api.GET("/get-budgets", h.Budget.GetBudgets)
	api.GET("/get-all-budgets", h.Budget.GetAllBudgets)
	api.POST("/add-budget", h.Budget.CreateBudget)
	api.PUT("/update-budget/:id", h.Budget.UpdateBudget)
	api.DELETE("/delete-budget/:id", h.Budget.DeleteBudget)
	api.POST("/delete-budget/:budgetId/spending", h.Budget.RecordSpending)
	api.POST("/budgets/check-expired", h.Budget.CheckExpired)

	// Category routes
	api.POST("/add-category", h.Category.CreateCategory)
	api.GET("/get-categories", h.Category.GetCategories)
	api.GET("/get-category/:id", h.Category.GetCategory)
	api.PUT("/update-categories/:id", h.Category.UpdateCategory)
	api.DELETE("/delete-categories/:id", h.Category.DeleteCategory)

	// Expense routes
	api.POST("/add-expense", h.Expense.CreateExpense)
	api.GET("/get-expenses", h.Expense.GetExpenses)
	api.GET("/get-expenses/stats", h.Expense.GetExpenseStats)
	api.GET("/get-expense/:id", h.Expense.GetExpense)
	api.PUT("/update-expense/:id", h.Expense.UpdateExpense)
	api.DELETE("/delete-expense/:id", h.Expense.DeleteExpense)

	// Receipt routes
	api.POST("/expenses/:id/receipt", h.Expense.UploadReceipt)
	api.GET("/expenses/:id/receipt", h.Expense.GetReceipt)
	api.DELETE("/expenses/:id/receipt", h.Expense.DeleteReceipt)

	// Income routes
	api.POST("/add-income", h.Income.CreateIncome)
	api.GET("/get-incomes", h.Income.GetIncomes)
	api.GET("/get-incomes/stats", h.Income.GetIncomeStats)
	api.GET("/get-incomes/monthly", h.Income.GetMonthlyIncome)
	api.GET("/get-income/:id", h.Income.GetIncome)
	api.PUT("/update-income/:id", h.Income.UpdateIncome)
	api.DELETE("/delete-income/:id", h.Income.DeleteIncome)

	// Notification routes
	api.GET("/notification", h.Notification.GetNotifications)
	api.PATCH("/notification/:id/read", h.Notification.MarkRead)

	// Transaction routes
	api.POST("/add-transaction", h.Transaction.CreateTransaction)
	api.GET("/get-transactions", h.Transaction.GetTransactions)
	api.GET("/get-transactions/stats", h.Transaction.GetTransactionStats)
	api.GET("/get-transaction/:id", h.Transaction.GetTransaction)
	api.DELETE("/delete-transaction/:id", h.Transaction.DeleteTransaction)
	api.GET("/transactions/report", h.Transaction.GetReport)
}
