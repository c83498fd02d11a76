package cakecartserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions holds the API handler groups served by the router.
type ApiHandleFunctions struct {
	CartAPI CartAPI
}

// NewRouter returns a new router with session resolution wired in.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the cart routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(SessionMiddleware())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// defaultFunc answers routes without a bound handler.
func defaultFunc(c *gin.Context) {
	c.Status(http.StatusNotImplemented)
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			Name:        "GetCart",
			Method:      http.MethodGet,
			Pattern:     "/v1/cart",
			HandlerFunc: handleFunctions.CartAPI.GetCart,
		},
		{
			Name:        "AddItem",
			Method:      http.MethodPost,
			Pattern:     "/v1/cart/items",
			HandlerFunc: handleFunctions.CartAPI.AddItem,
		},
		{
			Name:        "EditItem",
			Method:      http.MethodPut,
			Pattern:     "/v1/cart/items/:itemId",
			HandlerFunc: handleFunctions.CartAPI.EditItem,
		},
		{
			Name:        "UpdateQuantity",
			Method:      http.MethodPut,
			Pattern:     "/v1/cart/items/:itemId/quantity",
			HandlerFunc: handleFunctions.CartAPI.UpdateQuantity,
		},
		{
			Name:        "RemoveItem",
			Method:      http.MethodDelete,
			Pattern:     "/v1/cart/items/:itemId",
			HandlerFunc: handleFunctions.CartAPI.RemoveItem,
		},
		{
			Name:        "ClearCart",
			Method:      http.MethodDelete,
			Pattern:     "/v1/cart",
			HandlerFunc: handleFunctions.CartAPI.ClearCart,
		},
		{
			Name:        "ConfirmBakerySwitch",
			Method:      http.MethodPost,
			Pattern:     "/v1/cart/switch/confirm",
			HandlerFunc: handleFunctions.CartAPI.ConfirmBakerySwitch,
		},
		{
			Name:        "CancelBakerySwitch",
			Method:      http.MethodPost,
			Pattern:     "/v1/cart/switch/cancel",
			HandlerFunc: handleFunctions.CartAPI.CancelBakerySwitch,
		},
		{
			Name:        "SetCheckoutMeta",
			Method:      http.MethodPut,
			Pattern:     "/v1/cart/checkout-meta",
			HandlerFunc: handleFunctions.CartAPI.SetCheckoutMeta,
		},
		{
			Name:        "SyncCart",
			Method:      http.MethodPost,
			Pattern:     "/v1/cart/sync",
			HandlerFunc: handleFunctions.CartAPI.SyncCart,
		},
		{
			Name:        "CompleteOrder",
			Method:      http.MethodPost,
			Pattern:     "/v1/cart/order",
			HandlerFunc: handleFunctions.CartAPI.CompleteOrder,
		},
		{
			Name:        "DropSession",
			Method:      http.MethodDelete,
			Pattern:     "/v1/cart/session",
			HandlerFunc: handleFunctions.CartAPI.DropSession,
		},
	}
}
