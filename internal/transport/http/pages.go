package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/Todo_APP_BackEnd/internal/util"
)

var resetPasswordPage = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<meta name="referrer" content="no-referrer" />
<title>Reset your password</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: #f4f6fb; color: #333; min-height: 100vh; display: flex; justify-content: center; align-items: center; }
.card { background: #fff; padding: 28px; border-radius: 8px; width: 90%; max-width: 380px; box-shadow: 0 10px 40px rgba(0,0,0,0.1); }
input { width: 100%; box-sizing: border-box; padding: 10px; margin: 8px 0; border: 1px solid #ccc; border-radius: 4px; }
button { width: 100%; padding: 12px; font-size: 16px; border: none; border-radius: 4px; cursor: pointer; background: #4a90e2; color: #fff; }
#status { margin-top: 12px; min-height: 1em; }
</style>
</head>
<body>
<div class="card">
  <h2>Choose a new password</h2>
  <form id="reset-form" data-action="{{.Action}}">
    <input type="password" name="new_password" placeholder="New password" autocomplete="new-password" required />
    <input type="password" name="confirm_password" placeholder="Confirm password" autocomplete="new-password" required />
    <button type="submit">Reset password</button>
  </form>
  <p id="status"></p>
</div>
<script>
const form = document.getElementById('reset-form');
const status = document.getElementById('status');
form.addEventListener('submit', async (event) => {
  event.preventDefault();
  const data = new FormData(form);
  if (data.get('new_password') !== data.get('confirm_password')) {
    status.textContent = 'Passwords do not match.';
    return;
  }
  const res = await fetch(form.dataset.action, {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ new_password: data.get('new_password') })
  });
  const body = await res.json().catch(() => ({}));
  status.textContent = res.ok ? (body.msg || 'Password has been reset.') : (body.error || 'Reset failed.');
  if (res.ok) { form.reset(); }
});
</script>
</body>
</html>`))

func RegisterPages(e *echo.Echo) {
	e.GET("/reset-password/:token", func(c echo.Context) error {
		token := c.Param("token")
		if !util.ValidResetToken(token) {
			return c.String(http.StatusNotFound, "not found")
		}

		var buf bytes.Buffer
		data := struct{ Action string }{Action: "/api/v1/auth/reset-password/" + token}
		if err := resetPasswordPage.Execute(&buf, data); err != nil {
			return c.String(http.StatusInternalServerError, "unable to render page")
		}
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.HTMLBlob(http.StatusOK, buf.Bytes())
	})
}
