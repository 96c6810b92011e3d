package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>todofy — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the auth and todo endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "todofy", "version": "v0.1.0" },
  "paths": {
    "/api/v1/auth/register": {
      "post": {
        "summary": "Create an account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"name":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "account created" }, "409": { "description": "email already registered" } }
      }
    },
    "/api/v1/auth/login": {
      "post": {
        "summary": "Exchange credentials for tokens",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/v1/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/v1/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Get the authenticated account", "responses": { "200": { "description": "account" }, "401": { "description": "unauthorized" } } }
    },
    "/api/v1/todos": {
      "get": { "summary": "List todos for the authenticated user, newest first", "responses": { "200": { "description": "todo list" } } },
      "post": {
        "summary": "Create a todo",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"}}}}}},
        "responses": { "201": { "description": "todo created" }, "400": { "description": "validation failed" } }
      }
    },
    "/api/v1/todos/{id}": {
      "get": { "summary": "Get a todo by id", "responses": { "200": { "description": "todo" }, "404": { "description": "not found" } } },
      "patch": {
        "summary": "Partially update a todo",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"},"completed":{"type":"boolean"}}}}}},
        "responses": { "200": { "description": "updated todo" }, "404": { "description": "not found" } }
      },
      "delete": { "summary": "Delete a todo", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/v1/todos/{id}/toggle": {
      "post": { "summary": "Flip the completion flag", "responses": { "200": { "description": "updated todo" }, "404": { "description": "not found" } } }
    },
    "/api/v1/todos/completed/all": {
      "delete": { "summary": "Delete all completed todos for the authenticated user", "responses": { "200": { "description": "deleted count" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
