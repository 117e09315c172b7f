// Package email entrega los tokens de reset fuera de banda.
// El core nunca transmite el token: solo se lo pasa al Sender configurado.
package email

// Sender es la interfaz para enviar emails.
type Sender interface {
	// Send envía un email con contenido HTML y texto plano.
	Send(to, subject, htmlBody, textBody string) error
}
