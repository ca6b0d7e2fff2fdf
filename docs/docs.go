// Package docs holds the OpenAPI document served under /swagger. It is
// maintained by hand next to the handler annotations and registered with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/health": {
			"get": {
				"tags": [
					"health"
				],
				"summary": "Health check",
				"description": "Check if the service and its database are up",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.HealthResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/dto.HealthResponse"
						}
					}
				}
			}
		},
		"/oauth/token": {
			"post": {
				"tags": [
					"OAuth2"
				],
				"summary": "OAuth2 token endpoint",
				"description": "Issues a JWT access token for the client_credentials grant. Credentials go in the form or in HTTP Basic auth.",
				"consumes": [
					"application/x-www-form-urlencoded"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Must be client_credentials",
						"name": "grant_type",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Client ID",
						"name": "client_id",
						"in": "formData"
					},
					{
						"type": "string",
						"description": "Client secret",
						"name": "client_secret",
						"in": "formData"
					},
					{
						"type": "string",
						"description": "Space separated scopes",
						"name": "scope",
						"in": "formData"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/auth.TokenResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/auth.OAuthError"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/auth.OAuthError"
						}
					}
				}
			}
		},
		"/api/auth/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a customer",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Registration",
						"name": "customer",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.CustomerResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"409": {
						"description": "Conflict",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/auth/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Log in",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Credentials",
						"name": "credentials",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.LoginResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"429": {
						"description": "Too Many Requests",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/pizzas": {
			"get": {
				"tags": [
					"pizzas"
				],
				"summary": "Get all pizzas",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Filter by pizza name (partial, case insensitive)",
						"name": "name",
						"in": "query"
					},
					{
						"type": "number",
						"description": "Minimum price",
						"name": "minPrice",
						"in": "query"
					},
					{
						"type": "number",
						"description": "Maximum price",
						"name": "maxPrice",
						"in": "query"
					},
					{
						"type": "boolean",
						"description": "Filter by availability",
						"name": "available",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number, starting at 0",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "size",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Sort field and direction, e.g. price,desc",
						"name": "sort",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/dto.PageResponse"
								},
								{
									"type": "object",
									"properties": {
										"content": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/dto.PizzaResponse"
											}
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"pizzas"
				],
				"summary": "Create a new pizza",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Pizza",
						"name": "pizza",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.PizzaRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.PizzaResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/pizzas/{id}": {
			"get": {
				"tags": [
					"pizzas"
				],
				"summary": "Get pizza by ID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Pizza ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PizzaResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"tags": [
					"pizzas"
				],
				"summary": "Update a pizza",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Pizza ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Pizza",
						"name": "pizza",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.PizzaRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PizzaResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"pizzas"
				],
				"summary": "Delete a pizza",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Pizza ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/pizzas/{id}/image": {
			"post": {
				"tags": [
					"pizzas"
				],
				"summary": "Upload a pizza image",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Pizza ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "file",
						"description": "JPEG or PNG image",
						"name": "file",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PizzaResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "List customers",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Page number, starting at 0",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "size",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Sort field and direction, e.g. price,desc",
						"name": "sort",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/dto.PageResponse"
								},
								{
									"type": "object",
									"properties": {
										"content": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/dto.CustomerResponse"
											}
										}
									}
								}
							]
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers/{id}": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "Get customer by ID",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.CustomerResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers/{id}/orders": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "List the orders of a customer",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "boolean",
						"description": "Include cancelled orders",
						"name": "includeCancelled",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number, starting at 0",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "size",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/dto.PageResponse"
								},
								{
									"type": "object",
									"properties": {
										"content": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/dto.OrderResponse"
											}
										}
									}
								}
							]
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers/{id}/favorites": {
			"get": {
				"tags": [
					"customers"
				],
				"summary": "List favorite pizzas",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.PizzaResponse"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/customers/{id}/favorites/{pizzaId}": {
			"post": {
				"tags": [
					"customers"
				],
				"summary": "Add a favorite pizza",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Pizza ID",
						"name": "pizzaId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.PizzaResponse"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"customers"
				],
				"summary": "Remove a favorite pizza",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Customer ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Pizza ID",
						"name": "pizzaId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.PizzaResponse"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/orders": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "List orders",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Filter by customer",
						"name": "customerId",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Filter by status",
						"name": "status",
						"in": "query",
						"enum": [
							"PENDING",
							"CONFIRMED",
							"PREPARING",
							"READY",
							"DELIVERED",
							"CANCELLED"
						]
					},
					{
						"type": "integer",
						"description": "Page number, starting at 0",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size",
						"name": "size",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Sort field and direction, e.g. price,desc",
						"name": "sort",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"allOf": [
								{
									"$ref": "#/definitions/dto.PageResponse"
								},
								{
									"type": "object",
									"properties": {
										"content": {
											"type": "array",
											"items": {
												"$ref": "#/definitions/dto.OrderResponse"
											}
										}
									}
								}
							]
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"orders"
				],
				"summary": "Place an order",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Order",
						"name": "order",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateOrderRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.OrderResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/orders/live": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Live order feed",
				"description": "Websocket stream of order events.",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Bearer token for clients that cannot set headers",
						"name": "access_token",
						"in": "query"
					}
				],
				"responses": {
					"101": {
						"description": "Switching Protocols"
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/orders/{id}": {
			"get": {
				"tags": [
					"orders"
				],
				"summary": "Get order by ID",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Order ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.OrderResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"orders"
				],
				"summary": "Cancel an order",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Order ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/orders/{id}/status": {
			"patch": {
				"tags": [
					"orders"
				],
				"summary": "Change the status of an order",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Order ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "New status",
						"name": "status",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.UpdateOrderStatusRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.OrderResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/clients": {
			"get": {
				"tags": [
					"OAuth2 Clients"
				],
				"summary": "List OAuth2 clients",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/dto.ClientResponse"
							}
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"tags": [
					"OAuth2 Clients"
				],
				"summary": "Create OAuth2 client",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Client details",
						"name": "client",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.CreateClientRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/dto.ClientResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Forbidden",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"422": {
						"description": "Unprocessable Entity",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/clients/{id}": {
			"get": {
				"tags": [
					"OAuth2 Clients"
				],
				"summary": "Get OAuth2 client",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Client ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.ClientResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"tags": [
					"OAuth2 Clients"
				],
				"summary": "Delete OAuth2 client",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Client ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "Client deleted successfully"
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"auth.OAuthError": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"error_description": {
					"type": "string"
				}
			}
		},
		"auth.TokenResponse": {
			"type": "object",
			"properties": {
				"access_token": {
					"type": "string"
				},
				"token_type": {
					"type": "string"
				},
				"expires_in": {
					"type": "integer"
				},
				"scope": {
					"type": "string"
				}
			}
		},
		"dto.ClientResponse": {
			"type": "object",
			"properties": {
				"clientId": {
					"type": "string"
				},
				"clientSecret": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"domain": {
					"type": "string"
				},
				"scopes": {
					"type": "string"
				},
				"customerId": {
					"type": "integer"
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"dto.CreateClientRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"maxLength": 100,
					"minLength": 2
				},
				"domain": {
					"type": "string"
				},
				"scopes": {
					"type": "string",
					"maxLength": 255
				},
				"customerId": {
					"type": "integer"
				}
			},
			"required": [
				"name"
			]
		},
		"dto.CreateOrderRequest": {
			"type": "object",
			"properties": {
				"customerId": {
					"type": "integer"
				},
				"orderLines": {
					"type": "array",
					"minItems": 1,
					"items": {
						"$ref": "#/definitions/dto.OrderLineRequest"
					}
				}
			},
			"required": [
				"customerId",
				"orderLines"
			]
		},
		"dto.CustomerResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phone": {
					"type": "string"
				},
				"address": {
					"type": "string"
				},
				"role": {
					"type": "string",
					"enum": [
						"CUSTOMER",
						"ADMIN"
					]
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"dto.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"database": {
					"type": "string"
				}
			}
		},
		"dto.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			},
			"required": [
				"email",
				"password"
			]
		},
		"dto.LoginResponse": {
			"type": "object",
			"properties": {
				"accessToken": {
					"type": "string"
				},
				"tokenType": {
					"type": "string"
				},
				"expiresIn": {
					"type": "integer"
				},
				"customer": {
					"$ref": "#/definitions/dto.CustomerResponse"
				}
			}
		},
		"dto.NutritionalInfoRequest": {
			"type": "object",
			"properties": {
				"calories": {
					"type": "integer",
					"maximum": 10000,
					"minimum": 0
				},
				"protein": {
					"type": "number",
					"minimum": 0
				},
				"carbs": {
					"type": "number",
					"minimum": 0
				},
				"fat": {
					"type": "number",
					"minimum": 0
				}
			}
		},
		"dto.NutritionalInfoResponse": {
			"type": "object",
			"properties": {
				"calories": {
					"type": "integer"
				},
				"protein": {
					"type": "number"
				},
				"carbs": {
					"type": "number"
				},
				"fat": {
					"type": "number"
				}
			}
		},
		"dto.OrderLineRequest": {
			"type": "object",
			"properties": {
				"pizzaId": {
					"type": "integer"
				},
				"quantity": {
					"type": "integer",
					"maximum": 100,
					"minimum": 1
				}
			},
			"required": [
				"pizzaId",
				"quantity"
			]
		},
		"dto.OrderLineResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"pizzaId": {
					"type": "integer"
				},
				"pizzaName": {
					"type": "string"
				},
				"quantity": {
					"type": "integer"
				},
				"unitPrice": {
					"type": "number"
				},
				"subtotal": {
					"type": "number"
				}
			}
		},
		"dto.OrderResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"orderNumber": {
					"type": "string"
				},
				"customerId": {
					"type": "integer"
				},
				"customerName": {
					"type": "string"
				},
				"status": {
					"type": "string",
					"enum": [
						"PENDING",
						"CONFIRMED",
						"PREPARING",
						"READY",
						"DELIVERED",
						"CANCELLED"
					]
				},
				"totalAmount": {
					"type": "number"
				},
				"orderDate": {
					"type": "string",
					"format": "date-time"
				},
				"orderLines": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.OrderLineResponse"
					}
				}
			}
		},
		"dto.PageResponse": {
			"type": "object",
			"properties": {
				"content": {
					"type": "array",
					"items": {}
				},
				"page": {
					"type": "integer"
				},
				"size": {
					"type": "integer"
				},
				"totalElements": {
					"type": "integer"
				},
				"totalPages": {
					"type": "integer"
				}
			}
		},
		"dto.PizzaRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"maxLength": 100,
					"minLength": 2
				},
				"description": {
					"type": "string",
					"maxLength": 500
				},
				"price": {
					"type": "number"
				},
				"imageUrl": {
					"type": "string"
				},
				"available": {
					"type": "boolean"
				},
				"nutritionalInfo": {
					"$ref": "#/definitions/dto.NutritionalInfoRequest"
				}
			},
			"required": [
				"name",
				"price"
			]
		},
		"dto.PizzaResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"name": {
					"type": "string"
				},
				"description": {
					"type": "string"
				},
				"price": {
					"type": "number"
				},
				"imageUrl": {
					"type": "string"
				},
				"available": {
					"type": "boolean"
				},
				"nutritionalInfo": {
					"$ref": "#/definitions/dto.NutritionalInfoResponse"
				},
				"createdAt": {
					"type": "string",
					"format": "date-time"
				},
				"updatedAt": {
					"type": "string",
					"format": "date-time"
				}
			}
		},
		"dto.RegisterRequest": {
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"maxLength": 100,
					"minLength": 2
				},
				"email": {
					"type": "string"
				},
				"password": {
					"type": "string",
					"maxLength": 72,
					"minLength": 8
				},
				"phone": {
					"type": "string",
					"maxLength": 20
				},
				"address": {
					"type": "string",
					"maxLength": 255
				}
			},
			"required": [
				"name",
				"email",
				"password"
			]
		},
		"dto.UpdateOrderStatusRequest": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string",
					"enum": [
						"PENDING",
						"CONFIRMED",
						"PREPARING",
						"READY",
						"DELIVERED",
						"CANCELLED"
					]
				}
			},
			"required": [
				"status"
			]
		},
		"models.ErrorResponse": {
			"type": "object",
			"properties": {
				"timestamp": {
					"type": "string",
					"format": "date-time"
				},
				"status": {
					"type": "integer"
				},
				"error": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"path": {
					"type": "string"
				},
				"validationErrors": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.FieldError"
					}
				}
			}
		},
		"models.FieldError": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PizzaStore API",
	Description:      "Pizza catalog, customers and orders with JWT and OAuth2 client credentials authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
