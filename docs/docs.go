// Package docs registra a documentação OpenAPI servida em /swagger/.
// As anotações @Summary/@Router dos handlers descrevem as mesmas rotas.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/register": {"post": {"tags": ["users"], "summary": "Registra um novo cliente", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/login": {"post": {"tags": ["users"], "summary": "Autentica um usuário e retorna um JWT", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}},
        "/employees": {"post": {"tags": ["users"], "summary": "Cadastra um funcionário", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}}}}},
        "/products": {
            "get": {"tags": ["products"], "summary": "Lista o catálogo", "parameters": [
                {"type": "integer", "name": "page", "in": "query"},
                {"type": "integer", "name": "limit", "in": "query"},
                {"type": "string", "name": "name", "in": "query"},
                {"type": "boolean", "name": "is_active", "in": "query"}
            ], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}}}},
            "post": {"tags": ["products"], "summary": "Cadastra um produto", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}}}}
        },
        "/products/{id}": {
            "get": {"tags": ["products"], "summary": "Busca um produto pelo ID", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}},
            "put": {"tags": ["products"], "summary": "Atualiza um produto", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}}}}
        },
        "/cart": {
            "get": {"tags": ["cart"], "summary": "Carrinho do usuário autenticado", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CartResponse"}}}},
            "delete": {"tags": ["cart"], "summary": "Esvazia o carrinho", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CartResponse"}}}}
        },
        "/cart/items": {"post": {"tags": ["cart"], "summary": "Soma uma quantidade ao item do produto", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CartResponse"}}}}},
        "/cart/items/{productId}": {
            "put": {"tags": ["cart"], "summary": "Define a quantidade absoluta de um item (0 remove)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CartResponse"}}}},
            "delete": {"tags": ["cart"], "summary": "Remove o item do produto", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CartResponse"}}}}
        },
        "/cart/sync": {"post": {"tags": ["cart"], "summary": "Mescla o carrinho anônimo do cliente ao do servidor", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CartResponse"}}}}}
    },
    "definitions": {
        "domain.Product": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"},
            "price": {"type": "string"}, "discount": {"type": "string"}, "discountType": {"type": "string"},
            "image": {"type": "string"}, "isActive": {"type": "boolean"}
        }},
        "domain.User": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}
        }},
        "domain.CartItem": {"type": "object", "properties": {
            "product": {"$ref": "#/definitions/domain.Product"}, "quantity": {"type": "integer"}
        }},
        "domain.Cart": {"type": "object", "properties": {
            "id": {"type": "string"}, "userId": {"type": "string"},
            "items": {"type": "array", "items": {"$ref": "#/definitions/domain.CartItem"}}
        }},
        "domain.CartResponse": {"type": "object", "properties": {
            "success": {"type": "boolean"}, "cart": {"$ref": "#/definitions/domain.Cart"}
        }},
        "domain.ErrorResponse": {"type": "object", "properties": {
            "success": {"type": "boolean"}, "code": {"type": "integer"}, "category": {"type": "string"}, "message": {"type": "string"}
        }}
    }
}`

// SwaggerInfo guarda as informações exportadas da API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Conecta-Loja API",
	Description:      "Catálogo, autenticação e carrinho sincronizado da Conecta-Loja.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
