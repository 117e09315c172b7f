package email

import (
	"bytes"
	texttpl "text/template"
)

// Template de reset por defecto. Los deployments lo pueden reemplazar;
// el core solo necesita que el token viaje fuera de banda.
var resetText = texttpl.Must(texttpl.New("reset_text").Parse(
	`Hola {{.Name}},

Recibimos un pedido para restablecer tu contraseña. Usá este código dentro
de la próxima hora:

{{.Token}}

Si no fuiste vos, ignorá este mensaje.
`))

var resetHTML = texttpl.Must(texttpl.New("reset_html").Parse(
	`<p>Hola {{.Name}},</p>
<p>Recibimos un pedido para restablecer tu contraseña. Usá este código dentro de la próxima hora:</p>
<p><code>{{.Token}}</code></p>
<p>Si no fuiste vos, ignorá este mensaje.</p>
`))

type ResetVars struct {
	Name  string
	Token string
}

// RenderReset renderiza el mail de reset (html, text).
func RenderReset(vars ResetVars) (string, string, error) {
	var h, t bytes.Buffer
	if err := resetHTML.Execute(&h, vars); err != nil {
		return "", "", err
	}
	if err := resetText.Execute(&t, vars); err != nil {
		return "", "", err
	}
	return h.String(), t.String(), nil
}
