package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webnovauz/paint-management-backend/models"
)

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListCustomers(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func listDebtorsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListDebtors(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func listCustomersWithPrepaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListCustomersWithPrepayment(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreateCustomer(c.Request.Context(), &input)
		render(c, http.StatusCreated, result, err)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetCustomer(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		render(c, http.StatusOK, result, err)
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.DeleteCustomer(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func getCustomerBalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetCustomerBalance(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func listPaymentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := models.ListPayments(c.Request.Context())
		render(c, http.StatusOK, results, err)
	}
}

func listPaymentsByCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("customer_id") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id is required"})
			return
		}
		customerId, ok := queryId(c, "customer_id")
		if !ok {
			return
		}
		results, err := models.ListPaymentsByCustomer(c.Request.Context(), customerId)
		render(c, http.StatusOK, results, err)
	}
}

func createPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPayment
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.CreatePayment(c.Request.Context(), &input)
		if err == nil {
			countDocument("payment")
		}
		render(c, http.StatusCreated, result, err)
	}
}

func getPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.GetPayment(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}

func updatePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.NewPayment
		if !bindJSON(c, &input) {
			return
		}
		result, err := models.UpdatePayment(c.Request.Context(), id, &input)
		render(c, http.StatusOK, result, err)
	}
}

func deletePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		result, err := models.DeletePayment(c.Request.Context(), id)
		render(c, http.StatusOK, result, err)
	}
}
