// Package docs registers the OpenAPI description served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/docqa/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Create session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.SessionInfo"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Get session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionInfo"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Reset session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Another operation is in flight", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/document": {
            "post": {
                "consumes": ["multipart/form-data", "application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Upload document",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Document", "name": "file", "in": "formData"},
                    {"type": "string", "description": "Filename for raw uploads", "name": "filename", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UploadResult"}},
                    "400": {"description": "Missing file or filename", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Another operation is in flight", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "415": {"description": "Unsupported file type", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "File could not be parsed", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "Embedding provider unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/ask": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Ask a question",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Question", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.askRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AnswerResult"}},
                    "400": {"description": "Empty question", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Another operation is in flight", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "503": {"description": "AI provider unavailable", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Conversation history",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ConversationTurn"}}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/transcript": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sessions"],
                "summary": "Archived transcript",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ConversationTurn"}}},
                    "503": {"description": "No transcript backend configured", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/settings/ai/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["AI Settings"],
                "summary": "Get AI status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/driving.AISettingsStatus"}}
                }
            }
        },
        "/settings/ai": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["AI Settings"],
                "summary": "Update AI settings",
                "parameters": [
                    {"description": "AI settings to update", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/driving.UpdateAISettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/driving.AISettingsStatus"}},
                    "400": {"description": "Invalid configuration or unsupported provider", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "invalid request body"}}
        },
        "http.askRequest": {
            "type": "object",
            "properties": {"question": {"type": "string", "example": "What is the capital of France?"}}
        },
        "domain.SessionInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "has_document": {"type": "boolean"},
                "document_id": {"type": "string"},
                "filename": {"type": "string"},
                "chunk_count": {"type": "integer"},
                "dimensions": {"type": "integer"},
                "turn_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "last_active_at": {"type": "string"}
            }
        },
        "domain.UploadResult": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "document_id": {"type": "string"},
                "filename": {"type": "string"},
                "chunk_count": {"type": "integer"},
                "dimensions": {"type": "integer"},
                "message": {"type": "string", "example": "Document report.pdf processed: 42 chunks indexed"}
            }
        },
        "domain.Chunk": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "text": {"type": "string"},
                "source_offset": {"type": "integer"},
                "end_offset": {"type": "integer"}
            }
        },
        "domain.SearchHit": {
            "type": "object",
            "properties": {
                "chunk": {"$ref": "#/definitions/domain.Chunk"},
                "score": {"type": "number"}
            }
        },
        "domain.ConversationTurn": {
            "type": "object",
            "properties": {
                "role": {"type": "string", "enum": ["user", "assistant"]},
                "content": {"type": "string"},
                "order": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        },
        "domain.AnswerResult": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "state": {"type": "string", "enum": ["no_document", "answered"]},
                "question": {"type": "string"},
                "standalone_question": {"type": "string"},
                "answer": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/domain.SearchHit"}},
                "history": {"type": "array", "items": {"$ref": "#/definitions/domain.ConversationTurn"}},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "driving.EmbeddingSettingsInput": {
            "type": "object",
            "properties": {
                "provider": {"type": "string", "enum": ["openai", "ollama", "google"]},
                "model": {"type": "string"},
                "api_key": {"type": "string"},
                "base_url": {"type": "string"}
            }
        },
        "driving.LLMSettingsInput": {
            "type": "object",
            "properties": {
                "provider": {"type": "string", "enum": ["openai", "anthropic", "ollama", "google"]},
                "model": {"type": "string"},
                "api_key": {"type": "string"},
                "base_url": {"type": "string"}
            }
        },
        "driving.UpdateAISettingsRequest": {
            "type": "object",
            "properties": {
                "embedding": {"$ref": "#/definitions/driving.EmbeddingSettingsInput"},
                "llm": {"$ref": "#/definitions/driving.LLMSettingsInput"}
            }
        },
        "driving.AIServiceStatus": {
            "type": "object",
            "properties": {
                "available": {"type": "boolean"},
                "provider": {"type": "string"},
                "model": {"type": "string"},
                "embedding_dim": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "driving.AISettingsStatus": {
            "type": "object",
            "properties": {
                "embedding": {"$ref": "#/definitions/driving.AIServiceStatus"},
                "llm": {"$ref": "#/definitions/driving.AIServiceStatus"},
                "can_answer": {"type": "boolean"},
                "lock_backend": {"type": "string"},
                "transcript_backend": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "DocQA API",
	Description:      "Conversational question answering over uploaded documents.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
