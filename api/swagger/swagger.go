package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "University class timetable backend with conflict detection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Token issuing and account bootstrap"},
        {"name": "Lessons", "description": "Schedule entry CRUD"},
        {"name": "Schedule", "description": "Weekly views and week-level operations"},
        {"name": "Mutations", "description": "Conflict-guarded move and swap"},
        {"name": "Conflicts", "description": "Availability probes and audits"},
        {"name": "TimeSlots", "description": "Lesson grid catalog"},
        {"name": "LessonTypes", "description": "Lesson type dictionary"},
        {"name": "Users", "description": "Account management (admin)"},
        {"name": "Directory", "description": "Distinct schedule resources"},
        {"name": "Export", "description": "Schedule file downloads"}
    ],
    "paths": {
        "/auth/init": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Bootstrap the first administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InitAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Already initialized"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lessons",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "week", "in": "query", "type": "integer"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "teacher", "in": "query", "type": "string"},
                    {"name": "auditory", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Create lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Get lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Lessons"],
                "summary": "Update lesson",
                "description": "Partial update. Placement changes are conflict-checked unless force is set.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicting placement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/lessons/{id}/optimal-slots": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Least conflicting placements for a lesson",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/group/{value}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of a group",
                "parameters": [
                    {"name": "value", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/teacher/{value}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of a teacher",
                "parameters": [
                    {"name": "value", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/auditory/{value}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule of a room",
                "parameters": [
                    {"name": "value", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/date/{date}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Lessons of a calendar date",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/week": {
            "delete": {
                "tags": ["Schedule"],
                "summary": "Delete every lesson of a week",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/week/usage": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly lesson counts per resource",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/week/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Audit a week for double-bookings",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/availability": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Occupied slots of a week for given resources",
                "parameters": [
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"},
                    {"name": "teacher", "in": "query", "type": "string"},
                    {"name": "group", "in": "query", "type": "string"},
                    {"name": "auditory", "in": "query", "type": "string"},
                    {"name": "exclude", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/move": {
            "post": {
                "tags": ["Mutations"],
                "summary": "Move lessons to another slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Target slot occupied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/swap": {
            "post": {
                "tags": ["Mutations"],
                "summary": "Swap the placements of two lessons",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SwapRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicting placement", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/export/{dimension}/{value}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a weekly schedule file",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "dimension", "in": "path", "required": true, "type": "string", "enum": ["group", "teacher", "auditory"]},
                    {"name": "value", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "integer"},
                    {"name": "week", "in": "query", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "List time slots",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Create time slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-slots/init": {
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Seed the default lesson grid",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Catalog not empty"}
                }
            }
        },
        "/time-slots/reorder": {
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Reorder time slots",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"type": "object"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-types": {
            "get": {
                "tags": ["LessonTypes"],
                "summary": "List lesson types",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["LessonTypes"],
                "summary": "Create lesson type",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/groups": {
            "get": {
                "tags": ["Directory"],
                "summary": "List distinct groups",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Directory"],
                "summary": "List distinct teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auditories": {
            "get": {
                "tags": ["Directory"],
                "summary": "List distinct rooms",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "InitAdminRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"}
            }
        },
        "CreateLessonRequest": {
            "type": "object",
            "required": ["semester", "week_number", "group_name", "course", "subject", "date", "time_start", "time_end"],
            "properties": {
                "semester": {"type": "integer"},
                "week_number": {"type": "integer"},
                "group_name": {"type": "string"},
                "course": {"type": "integer"},
                "faculty": {"type": "string"},
                "subject": {"type": "string"},
                "lesson_type": {"type": "string"},
                "subgroup": {"type": "integer"},
                "date": {"type": "string"},
                "weekday": {"type": "integer"},
                "time_start": {"type": "string"},
                "time_end": {"type": "string"},
                "teacher_name": {"type": "string"},
                "auditory": {"type": "string"}
            }
        },
        "MoveRequest": {
            "type": "object",
            "required": ["target_weekday", "target_time_start", "target_time_end"],
            "properties": {
                "lesson_id": {"type": "string"},
                "group_name": {"type": "string"},
                "semester": {"type": "integer"},
                "week_number": {"type": "integer"},
                "source_weekday": {"type": "integer"},
                "source_time_start": {"type": "string"},
                "target_weekday": {"type": "integer"},
                "target_time_start": {"type": "string"},
                "target_time_end": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
        "SwapRequest": {
            "type": "object",
            "required": ["lesson1_id", "lesson2_id"],
            "properties": {
                "lesson1_id": {"type": "string"},
                "lesson2_id": {"type": "string"},
                "swap_locations": {"type": "boolean"},
                "force": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
