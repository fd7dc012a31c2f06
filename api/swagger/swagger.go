package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Field CRM API",
        "description": "Visit logging and compliance validation engine for the field sales force",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Visits", "description": "Visit wizard and logged visit records"},
        {"name": "Expenses", "description": "Single expense entry with live policy checks"},
        {"name": "ExpenseReports", "description": "Expense grouping and approval lifecycle"},
        {"name": "Tada", "description": "TA/DA claim validation"},
        {"name": "Reference", "description": "Vocabularies, policies, entities and allocations"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/visits": {
            "get": {
                "tags": ["Visits"],
                "summary": "List logged visits",
                "parameters": [
                    {"name": "entityId", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/{id}": {
            "get": {
                "tags": ["Visits"],
                "summary": "Get a logged visit",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/visits/drafts": {
            "post": {
                "tags": ["Visits"],
                "summary": "Start a visit draft",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}": {
            "get": {
                "tags": ["Visits"],
                "summary": "Get a visit draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Visits"],
                "summary": "Discard a visit draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/visits/drafts/{id}/required-fields": {
            "get": {
                "tags": ["Visits"],
                "summary": "Required fields for the current step",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/entity": {
            "put": {
                "tags": ["Visits"],
                "summary": "Select the visited entity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetEntityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/contacts": {
            "put": {
                "tags": ["Visits"],
                "summary": "Record the contact selection",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetContactsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/purposes": {
            "put": {
                "tags": ["Visits"],
                "summary": "Record the visit purposes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetPurposesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/joint-working": {
            "put": {
                "tags": ["Visits"],
                "summary": "Record the accompanying manager",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetJointWorkingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/given-lines": {
            "post": {
                "tags": ["Visits"],
                "summary": "Add a specimen-given line",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddGivenLineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Insufficient allocation"}
                }
            }
        },
        "/visits/drafts/{id}/given-lines/{index}": {
            "delete": {
                "tags": ["Visits"],
                "summary": "Remove a specimen-given line",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/returned-lines": {
            "post": {
                "tags": ["Visits"],
                "summary": "Add a specimen-return line",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddReturnedLineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/returned-lines/{index}": {
            "delete": {
                "tags": ["Visits"],
                "summary": "Remove a specimen-return line",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/feedback": {
            "put": {
                "tags": ["Visits"],
                "summary": "Record feedback and payment fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetFeedbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/next-visit": {
            "put": {
                "tags": ["Visits"],
                "summary": "Schedule the follow-up visit",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetNextVisitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/next": {
            "post": {
                "tags": ["Visits"],
                "summary": "Advance the wizard one step",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Required fields missing"}
                }
            }
        },
        "/visits/drafts/{id}/back": {
            "post": {
                "tags": ["Visits"],
                "summary": "Move the wizard one step back",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/visits/drafts/{id}/submit": {
            "post": {
                "tags": ["Visits"],
                "summary": "Submit the draft as an immutable visit record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failed"}
                }
            }
        },
        "/expenses": {
            "get": {
                "tags": ["Expenses"],
                "summary": "List expenses",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Expenses"],
                "summary": "Create a draft expense",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExpenseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/expenses/policy-check": {
            "get": {
                "tags": ["Expenses"],
                "summary": "Check an amount against its category policy",
                "parameters": [
                    {"name": "category", "in": "query", "required": true, "type": "string"},
                    {"name": "amount", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/expenses/{id}": {
            "get": {
                "tags": ["Expenses"],
                "summary": "Get an expense",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Expenses"],
                "summary": "Update a draft expense",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExpenseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Already submitted"}
                }
            }
        },
        "/expense-reports": {
            "get": {
                "tags": ["ExpenseReports"],
                "summary": "List expense reports",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ExpenseReports"],
                "summary": "Submit draft expenses as a report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Receipt or title missing"}
                }
            }
        },
        "/expense-reports/{id}": {
            "get": {
                "tags": ["ExpenseReports"],
                "summary": "Get an expense report with its members",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/expense-reports/{id}/approve": {
            "post": {
                "tags": ["ExpenseReports"],
                "summary": "Approve a pending report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Invalid transition"}
                }
            }
        },
        "/expense-reports/{id}/reject": {
            "post": {
                "tags": ["ExpenseReports"],
                "summary": "Reject a pending report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Invalid transition"}
                }
            }
        },
        "/expense-reports/{id}/pay": {
            "post": {
                "tags": ["ExpenseReports"],
                "summary": "Mark an approved report paid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Invalid transition"}
                }
            }
        },
        "/expense-reports/{id}/export/csv": {
            "get": {
                "tags": ["ExpenseReports"],
                "summary": "Export a report as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/expense-reports/{id}/export/pdf": {
            "get": {
                "tags": ["ExpenseReports"],
                "summary": "Export a report as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/tada-claims": {
            "get": {
                "tags": ["Tada"],
                "summary": "List TA/DA claims",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tada"],
                "summary": "Submit a TA/DA claim",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateClaimRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No visit logged for the claim date"}
                }
            }
        },
        "/tada-claims/{id}": {
            "get": {
                "tags": ["Tada"],
                "summary": "Get a TA/DA claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tada-claims/{id}/approve": {
            "post": {
                "tags": ["Tada"],
                "summary": "Approve a pending or flagged claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tada-claims/{id}/reject": {
            "post": {
                "tags": ["Tada"],
                "summary": "Reject a pending or flagged claim",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tada-claims/{id}/pay": {
            "post": {
                "tags": ["Tada"],
                "summary": "Mark an approved claim as paid",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/vocabularies/{kind}": {
            "get": {
                "tags": ["Reference"],
                "summary": "Get one dropdown vocabulary",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/expense-policies": {
            "get": {
                "tags": ["Reference"],
                "summary": "List expense policies",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/entities": {
            "get": {
                "tags": ["Reference"],
                "summary": "List visitable entities",
                "parameters": [
                    {"name": "kind", "in": "query", "type": "string"},
                    {"name": "city", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/entities/{id}/contacts": {
            "get": {
                "tags": ["Reference"],
                "summary": "List the known contacts of one entity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reference/allocations": {
            "get": {
                "tags": ["Reference"],
                "summary": "List the salesman's specimen allocations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SetEntityRequest": {
            "type": "object",
            "required": ["entity_id"],
            "properties": {
                "entity_id": {"type": "string"},
                "supply_channel": {"type": "string"}
            }
        },
        "SetContactsRequest": {
            "type": "object",
            "properties": {
                "selected_contact_ids": {"type": "array", "items": {"type": "string"}},
                "new_contacts": {"type": "array", "items": {"$ref": "#/definitions/NewContact"}}
            }
        },
        "NewContact": {
            "type": "object",
            "required": ["name", "role"],
            "properties": {
                "name": {"type": "string"},
                "role": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "SetPurposesRequest": {
            "type": "object",
            "required": ["purposes"],
            "properties": {
                "purposes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SetJointWorkingRequest": {
            "type": "object",
            "properties": {
                "manager_ref": {"type": "string"}
            }
        },
        "AddGivenLineRequest": {
            "type": "object",
            "required": ["specimen_id", "quantity"],
            "properties": {
                "specimen_id": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "AddReturnedLineRequest": {
            "type": "object",
            "required": ["specimen_id", "quantity", "condition"],
            "properties": {
                "specimen_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "condition": {"type": "string", "enum": ["GOOD", "DAMAGED"]}
            }
        },
        "SetFeedbackRequest": {
            "type": "object",
            "properties": {
                "payment_amount": {"type": "integer"},
                "payment_mode": {"type": "string"},
                "feedback": {"type": "string"}
            }
        },
        "SetNextVisitRequest": {
            "type": "object",
            "properties": {
                "next_visit_date": {"type": "string", "format": "date-time"},
                "next_visit_note": {"type": "string"}
            }
        },
        "CreateExpenseRequest": {
            "type": "object",
            "required": ["category", "expense_date", "amount"],
            "properties": {
                "category": {"type": "string"},
                "expense_date": {"type": "string", "format": "date-time"},
                "amount": {"type": "integer", "description": "Amount in minor units"},
                "description": {"type": "string"},
                "receipt_ref": {"type": "string"}
            }
        },
        "UpdateExpenseRequest": {
            "type": "object",
            "required": ["category", "expense_date", "amount"],
            "properties": {
                "category": {"type": "string"},
                "expense_date": {"type": "string", "format": "date-time"},
                "amount": {"type": "integer"},
                "description": {"type": "string"},
                "receipt_ref": {"type": "string"}
            }
        },
        "CreateReportRequest": {
            "type": "object",
            "required": ["title", "expense_ids"],
            "properties": {
                "title": {"type": "string"},
                "expense_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "CreateClaimRequest": {
            "type": "object",
            "required": ["claim_date", "city", "travel_mode", "amount"],
            "properties": {
                "claim_date": {"type": "string", "format": "date-time"},
                "city": {"type": "string"},
                "travel_mode": {"type": "string"},
                "amount": {"type": "integer", "description": "Amount in minor units"}
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
