// Package whatsapp is a minimal client for the WhatsApp Cloud API messages
// endpoint. It sends either a free-form text message or, when configured, a
// pre-approved template message.
package whatsapp
