// Package docs регистрирует описание EquiGest API для swagger UI на /docs/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Регистрация пользователя",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.DummyUser"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Получение токена доступа",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.Credentials"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/payments/webhook": {
            "post": {
                "tags": ["payments"],
                "summary": "Уведомление платёжного провайдера",
                "parameters": [{"in": "header", "name": "X-Webhook-Signature", "type": "string", "required": true}],
                "responses": {"200": {"description": "Ignored"}, "202": {"description": "Queued"}, "401": {"description": "Bad signature"}}
            }
        },
        "/payments/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "Платёжный статус текущего пользователя",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/payments/customer": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "Привязка клиента платёжного провайдера",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/mares": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Список кобыл с графиками",
                "parameters": [
                    {"in": "query", "name": "mare_type", "type": "string", "enum": ["RECEIVER", "HEADQUARTERS"]},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "402": {"description": "Payment Required"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Добавление кобылы",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/mares/{name}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Кобыла и её график",
                "parameters": [{"in": "path", "name": "name", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Частичное обновление кобылы",
                "parameters": [{"in": "path", "name": "name", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Удаление кобылы с исходом жеребости",
                "parameters": [
                    {"in": "path", "name": "name", "type": "string", "required": true},
                    {"in": "query", "name": "outcome", "type": "string", "required": true, "enum": ["SUCCESS_PREGNANCY", "FAIL_PREGNANCY"]}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/mares/birth-forecast": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Кобылы с прогнозом родов в интервале",
                "parameters": [
                    {"in": "query", "name": "start_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "end_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "mare_type", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/mares/p4": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Кобылы-реципиенты с проверкой P4 в интервале",
                "parameters": [
                    {"in": "query", "name": "start_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "end_date", "type": "string", "format": "date", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/mares/herpes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Кобылы с вакцинацией от герпеса в интервале",
                "parameters": [
                    {"in": "query", "name": "start_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "end_date", "type": "string", "format": "date", "required": true},
                    {"in": "query", "name": "mare_type", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/mares/counters": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["mares"],
                "summary": "Счётчики жеребостей пользователя",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "models.DummyUser": {
            "type": "object",
            "required": ["username", "email", "password"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.Credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
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

// SwaggerInfo параметры, подставляемые в шаблон при отдаче doc.json.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EquiGest API",
	Description:      "Учёт жеребых кобыл: график ветеринарных мероприятий, прогноз родов и статистика.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
