package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Nano Banana Challenge</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Nano Banana Challenge</span>
        <h1>Prompt fast. Vote faster.</h1>
        <p>Start a session as captain or jump in with a six-letter code.</p>
      </header>

      <section class="panel">
        <div>
          <h2>Start a session</h2>
          <p>You become the captain and get a code to share with your crew.</p>
        </div>
        <form id="createForm" class="join-form">
          <input name="name" placeholder="Your name" autocomplete="name" required/>
          <button type="submit" class="primary">Start session</button>
        </form>
        <div id="createResult" class="result"></div>
      </section>

      <section class="panel">
        <div>
          <h2>Join a session</h2>
          <p>Enter the session code from your captain and your display name.</p>
        </div>
        <form id="joinForm" class="join-form">
          <input name="code" placeholder="Session code" autocomplete="off" required/>
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <button type="submit" class="secondary">Join session</button>
        </form>
        <div id="joinResult" class="result"></div>
      </section>
    </main>

    <script>
      const createForm = document.getElementById("createForm");
      const createResult = document.getElementById("createResult");
      const joinForm = document.getElementById("joinForm");
      const joinResult = document.getElementById("joinResult");

      createForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        createResult.textContent = "Starting session...";
        const name = createForm.elements.name.value.trim();
        const res = await fetch("/api/sessions", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          createResult.textContent = data.error || "Failed to start session.";
          return;
        }
        createResult.textContent = "Session ready. Code: " + data.session_code;
      });

      joinForm.addEventListener("submit", async (event) => {
        event.preventDefault();
        joinResult.textContent = "Joining session...";
        const code = joinForm.elements.code.value.trim().toUpperCase();
        const name = joinForm.elements.name.value.trim();
        const res = await fetch("/api/sessions/" + encodeURIComponent(code) + "/join", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ name })
        });
        const data = await res.json();
        if (!res.ok) {
          joinResult.textContent = data.error || "Failed to join session.";
          return;
        }
        joinResult.textContent = "Joined session " + code + " as " + data.icon + " " + name + ".";
      });
    </script>
  </body>
</html>
`)
		return nil
	})
}
