package handlers

import (
	"html/template"
	"net/http"
	"sync"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	Ready    bool
	Current  string
	Progress int
	Steps    []StartupStep
}

type StartupStep struct {
	Name      string
	Completed bool
}

var startupStatus = &StartupStatus{
	Ready:    false,
	Current:  "Initializing...",
	Progress: 0,
	Steps: []StartupStep{
		{Name: "Database connection", Completed: false},
		{Name: "Running migrations", Completed: false},
		{Name: "Loading templates", Completed: false},
		{Name: "Initializing services", Completed: false},
		{Name: "Warming narration voices", Completed: false},
		{Name: "Server ready", Completed: false},
	},
}

// SetCurrentStep updates the current initialization step
func SetCurrentStep(step string) {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()
	startupStatus.Current = step
}

// CompleteStep marks a step as completed and updates progress
func CompleteStep(stepName string) {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()

	for i := range startupStatus.Steps {
		if startupStatus.Steps[i].Name == stepName {
			startupStatus.Steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range startupStatus.Steps {
		if step.Completed {
			completed++
		}
	}
	startupStatus.Progress = (completed * 100) / len(startupStatus.Steps)
}

// MarkReady marks the server as fully initialized
func MarkReady() {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()
	startupStatus.Ready = true
	startupStatus.Current = "Server ready"
	startupStatus.Progress = 100
}

// IsReady returns whether the server is fully initialized
func IsReady() bool {
	startupStatus.mu.RLock()
	defer startupStatus.mu.RUnlock()
	return startupStatus.Ready
}

// ShowStartupStatus displays the startup status page
func ShowStartupStatus(w http.ResponseWriter, r *http.Request) {
	startupStatus.mu.RLock()
	defer startupStatus.mu.RUnlock()

	if startupStatus.Ready {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	tmpl := `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<meta http-equiv="refresh" content="2">
	<title>Mochi - Starting Up</title>
	<style>
		body {
			margin: 0;
			font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
			background: linear-gradient(135deg, #f4a7b9, #b98ad4);
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
		}
		.container {
			background: white;
			border-radius: 20px;
			padding: 40px;
			max-width: 480px;
			width: 100%;
		}
		h1 { margin: 0 0 6px; text-align: center; }
		.subtitle { margin: 0 0 24px; color: #8a7b85; text-align: center; }
		.progress-bar { height: 12px; background: #fce4ec; border-radius: 6px; overflow: hidden; }
		.progress-fill { height: 100%; background: #d4739b; transition: width .3s ease; }
		.progress-text { margin: 12px 0 24px; text-align: center; color: #d4739b; font-weight: 600; }
		.steps { list-style: none; margin: 0; padding: 0; }
		.step { padding: 10px 0; border-bottom: 1px solid #fce4ec; color: #999; }
		.step:last-child { border-bottom: none; }
		.step.completed { color: #6cae75; }
		.current-status { margin-top: 20px; text-align: center; color: #d4739b; font-style: italic; }
	</style>
</head>
<body>
	<div class="container">
		<h1>🍡 Mochi</h1>
		<p class="subtitle">Server Initialization</p>

		<div class="progress-bar">
			<div class="progress-fill" style="width: {{.Progress}}%"></div>
		</div>

		<div class="progress-text">{{.Progress}}% Complete</div>

		<ul class="steps">
			{{range .Steps}}
			<li class="step {{if .Completed}}completed{{end}}">{{if .Completed}}✓{{else}}○{{end}} {{.Name}}</li>
			{{end}}
		</ul>

		<div class="current-status">{{.Current}}</div>
	</div>
</body>
</html>`

	t, err := template.New("startup").Parse(tmpl)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t.Execute(w, startupStatus)
}
