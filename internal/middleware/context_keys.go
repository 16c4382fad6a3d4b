package middleware

import "github.com/gin-gonic/gin"

// customerIDKey is the key used to store the authenticated customer's ID in the context.
const customerIDKey = contextKey("customerID")

// GetCustomerIDFromContext retrieves the authenticated customer ID from the Gin context.
// It returns the customer ID and a boolean indicating if it was found.
func GetCustomerIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(customerIDKey)); exists {
		if id, ok := v.(string); ok {
			return id, true
		}
		return "", false
	}
	// check the request context as well
	if v := c.Request.Context().Value(customerIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id, true
		}
	}
	return "", false
}
