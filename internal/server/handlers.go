package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/process"
)

// WebSocketHandler upgrades GET requests from allowed origins and hands the
// connection to the hub, which runs a chat session over it.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.check,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	s.hub.Go(newWSConn(conn, r.RemoteAddr, s.cfg.WriteTimeout), s.service.Serve)
}

// HealthHandler answers with a plain text liveness message.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat server is running!")
}

// UsersHandler renders the live sessions as a plain text table.
func (s *Server) UsersHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	sessions := s.service.Registry().Sessions()
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(w, "No users currently connected")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Session", "Address", "Connected"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	now := time.Now()
	for _, session := range sessions {
		table.Append([]string{
			session.Name(),
			session.ID().String(),
			session.RemoteAddr(),
			now.Sub(session.ConnectedAt()).Truncate(time.Second).String(),
		})
	}
	table.Render()
}

type statsResponse struct {
	Users         int     `json:"users"`
	Connections   int     `json:"connections"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	RSSBytes      uint64  `json:"rss_bytes,omitempty"`
	Threads       int32   `json:"threads,omitempty"`
}

// StatsHandler reports user and connection counts plus process figures.
func (s *Server) StatsHandler(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		Users:         s.service.Registry().Count(),
		Connections:   s.hub.Count(),
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err != nil {
		s.log.Debug("Error while retrieving process", "error", err)
	} else {
		if mem, err := p.MemoryInfo(); err == nil {
			resp.RSSBytes = mem.RSS
		} else {
			s.log.Debug("Error while finding process memory", "error", err)
		}
		if threads, err := p.NumThreads(); err == nil {
			resp.Threads = threads
		} else {
			s.log.Debug("Error while finding process threads", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("Error writing stats response", "error", err)
	}
}

// TestPageHandler serves a small browser client for the WebSocket gateway.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, testPage)
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Chat WebSocket Test</title>
    <style>
        body { font-family: monospace; margin: 20px; }
        #log { border: 1px solid #ccc; height: 360px; padding: 10px; overflow-y: scroll; background: #f9f9f9; white-space: pre-wrap; }
        #line { width: 420px; padding: 5px; }
        .status { margin: 10px 0; padding: 5px; }
        .up { background: #d4edda; color: #155724; }
        .down { background: #f8d7da; color: #721c24; }
        .mine { color: blue; }
    </style>
</head>
<body>
    <h1>Chat WebSocket Test</h1>
    <div id="status" class="status down">Disconnected</div>
    <div>
        <input type="text" id="line" placeholder="Username, chat text or /help" disabled>
        <button id="send" disabled>Send</button>
        <button id="toggle">Connect</button>
    </div>
    <div id="log"></div>
    <script>
        let ws = null;
        const log = document.getElementById('log');
        const line = document.getElementById('line');
        const send = document.getElementById('send');
        const toggle = document.getElementById('toggle');
        const status = document.getElementById('status');

        function append(text, cls) {
            const row = document.createElement('div');
            if (cls) row.className = cls;
            row.textContent = text;
            log.appendChild(row);
            log.scrollTop = log.scrollHeight;
        }

        function setConnected(up) {
            status.textContent = up ? 'Connected' : 'Disconnected';
            status.className = 'status ' + (up ? 'up' : 'down');
            line.disabled = !up;
            send.disabled = !up;
            toggle.textContent = up ? 'Disconnect' : 'Connect';
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');
            ws.onopen = () => setConnected(true);
            ws.onmessage = (event) => append(event.data);
            ws.onclose = () => { append('-- connection closed --'); setConnected(false); ws = null; };
            ws.onerror = () => append('-- connection error --');
        }

        function submit() {
            const text = line.value;
            if (ws && ws.readyState === WebSocket.OPEN && text.trim() !== '') {
                ws.send(text);
                append('> ' + text, 'mine');
                line.value = '';
            }
        }

        toggle.onclick = () => (ws && ws.readyState === WebSocket.OPEN) ? ws.close() : connect();
        send.onclick = submit;
        line.addEventListener('keypress', (e) => { if (e.key === 'Enter') submit(); });
    </script>
</body>
</html>`
