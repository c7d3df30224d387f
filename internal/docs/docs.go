// Package docs registra el documento OpenAPI que sirve /swagger.
// Las anotaciones @Summary/@Router de los handlers son la fuente; `swag init -g cmd/api/main.go -o internal/docs`
// regenera este archivo con el detalle completo.
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
        "/inventory": {
            "get": {"tags": ["inventory"], "summary": "Listar inventario", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["inventory"], "summary": "Crear item de inventario", "responses": {"201": {"description": "Created"}}}
        },
        "/inventory/{itemID}/restock": {
            "post": {"tags": ["inventory"], "summary": "Reponer stock", "responses": {"200": {"description": "OK"}}}
        },
        "/appointments": {
            "get": {"tags": ["appointments"], "summary": "Listar citas", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["appointments"], "summary": "Registrar cita", "responses": {"201": {"description": "Created"}}}
        },
        "/queue": {
            "get": {"tags": ["appointments"], "summary": "Cola activa del día", "responses": {"200": {"description": "OK"}}}
        },
        "/queue/status": {
            "post": {"tags": ["appointments"], "summary": "Cambiar estado en la cola", "responses": {"200": {"description": "OK"}, "409": {"description": "INVALID_TRANSITION"}}}
        },
        "/records": {
            "post": {"tags": ["records"], "summary": "Registrar ficha clínica", "responses": {"201": {"description": "Created"}, "409": {"description": "APPOINTMENT_NOT_ELIGIBLE o INSUFFICIENT_STOCK"}}}
        },
        "/pets/{petID}/records": {
            "get": {"tags": ["records"], "summary": "Historial clínico de una mascota", "responses": {"200": {"description": "OK"}}}
        },
        "/billing/preview/{appointmentID}": {
            "get": {"tags": ["billing"], "summary": "Borrador de factura", "responses": {"200": {"description": "OK"}, "409": {"description": "ALREADY_BILLED o APPOINTMENT_NOT_COMPLETED"}}}
        },
        "/billing/generate": {
            "post": {"tags": ["billing"], "summary": "Emitir factura", "responses": {"201": {"description": "Created"}, "409": {"description": "ALREADY_BILLED"}}}
        },
        "/invoices/{invoiceID}": {
            "get": {"tags": ["invoices"], "summary": "Detalle de factura", "responses": {"200": {"description": "OK"}}}
        },
        "/invoices/{invoiceID}/pdf": {
            "get": {"tags": ["invoices"], "summary": "Factura en PDF", "produces": ["application/pdf"], "responses": {"200": {"description": "OK"}}}
        },
        "/owners/{ownerID}/invoices": {
            "get": {"tags": ["invoices"], "summary": "Estado de cuenta del dueño", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo se puede ajustar en main (Host, Version).
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Clinic Ops API",
	Description:      "Cola de atención, fichas clínicas con descuento de stock y facturación por cita.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
