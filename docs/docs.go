// Package docs registers the OpenAPI document of the books library api
// with swag so that http-swagger can serve it under /swagger.
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
    "securityDefinitions": {
        "BasicAuth": {
            "type": "basic"
        }
    },
    "paths": {
        "/api/books": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List all books or a filtered page of books",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"},
                    {"type": "string", "name": "genre", "in": "query"},
                    {"type": "string", "name": "author", "in": "query"},
                    {"type": "string", "name": "title", "in": "query"},
                    {"type": "string", "name": "publisher", "in": "query"},
                    {"type": "string", "name": "year", "in": "query"},
                    {"type": "string", "name": "isbn", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Create a book",
                "parameters": [
                    {"name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Book"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/books/{id}": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a book by id",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Replace a book",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "book", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Book"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/books/{id}/owners": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List the users owning a book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/books/author/{author}": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List the books of an author",
                "parameters": [{"type": "string", "name": "author", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/books/isbn/{isbn}": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a book by isbn, importing it from OpenLibrary when unknown",
                "parameters": [{"type": "string", "name": "isbn", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "201": {"description": "Imported"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/books/find_by_publisher_genre_and_year": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Find books by publisher, genre and year",
                "parameters": [
                    {"type": "string", "name": "publisher", "in": "query"},
                    {"type": "string", "name": "genre", "in": "query"},
                    {"type": "string", "name": "year", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/users": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List all users or a filtered page of users",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"},
                    {"type": "string", "name": "userName", "in": "query"},
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "string", "format": "date", "name": "birthDate", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a user",
                "parameters": [
                    {"name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/User"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/users/username": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get the username of the authenticated caller",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/users/find_by_birth_date_and_name": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Find users born between two dates with a name fragment",
                "parameters": [
                    {"type": "string", "format": "date", "name": "startDate", "in": "query", "required": true},
                    {"type": "string", "format": "date", "name": "endDate", "in": "query", "required": true},
                    {"type": "string", "name": "name", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/users/{id}": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user by id",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/User"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/users/{id}/password": {
            "put": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Change the password of a user",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "Password", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/users/{id}/books/{bookId}": {
            "post": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Add a book to the user collection",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "bookId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Remove a book from the user collection",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "bookId", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "Book": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "genre": {"type": "string"},
                "author": {"type": "string"},
                "image": {"type": "string"},
                "title": {"type": "string"},
                "subtitle": {"type": "string"},
                "publisher": {"type": "string"},
                "year": {"type": "string"},
                "pages": {"type": "integer"},
                "isbn": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "userName": {"type": "string"},
                "name": {"type": "string"},
                "birthDate": {"type": "string", "format": "date"},
                "password": {"type": "string"},
                "books": {"type": "array", "items": {"$ref": "#/definitions/Book"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Books Library API",
	Description:      "Library management backend for books, users and their collections.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
