// Command examplesrv wires httpcore's parser to a real listener via
// internal/connserver, demonstrating the pieces around the core: query
// decoding through pkg/queryutil, and a WebSocket hand-off through
// pkg/wsupgrade when a request asks for one.
package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/hyperflow/httpcore/internal/connserver"
	"github.com/hyperflow/httpcore/pkg/httpcore"
	"github.com/hyperflow/httpcore/pkg/queryutil"
	"github.com/hyperflow/httpcore/pkg/wsupgrade"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func handle(conn *connserver.Conn, req *httpcore.Request) {
	if isWebSocketUpgrade(req) {
		ws, err := wsupgrade.Upgrade(&upgrader, conn.NetConn(), req)
		if err != nil {
			log.Printf("conn %s: websocket upgrade failed: %v", conn.ID, err)
			return
		}
		conn.TakeOver()
		go serveWebSocket(conn.ID.String(), ws)
		return
	}

	if name, ok := queryutil.Get(req.RawQueryWithMarker(), "name"); ok {
		log.Printf("conn %s: %s %s (name=%s)", conn.ID, req.Method(), req.URL(), name)
	} else {
		log.Printf("conn %s: %s %s", conn.ID, req.Method(), req.URL())
	}
}

func isWebSocketUpgrade(req *httpcore.Request) bool {
	upgrade := req.Header([]byte("upgrade"))
	conn := req.Header([]byte("connection"))
	return bytes.EqualFold(upgrade, []byte("websocket")) && bytes.Contains(bytes.ToLower(conn), []byte("upgrade"))
}

func serveWebSocket(connID string, ws *websocket.Conn) {
	defer ws.Close()
	for {
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			log.Printf("conn %s: websocket closed: %v", connID, err)
			return
		}
		if err := ws.WriteMessage(messageType, message); err != nil {
			log.Printf("conn %s: websocket write failed: %v", connID, err)
			return
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	config := connserver.DefaultConfig()
	config.Addr = ":8080"
	config.Handler = handle

	srv := connserver.New(config)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", config.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
