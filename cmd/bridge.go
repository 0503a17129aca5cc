// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/kwalker/hidbridge/transport"
)

var (
	bridgeListenAddr string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Expose a local serial link over a WebSocket for remote clients",
	Long: `Opens the local serial port named by --port and re-exposes it as a
WebSocket endpoint, so hidbridge run/send/monitor/dashboard on a remote host
can attach with --url ws://<this host>:<port>/ws instead of a directly
wired serial cable.

Mirrors the client-side WebSocketConnection framing of transport.Open, run
in reverse: this process is the server side of the bridge, upgrading incoming
connections rather than dialing out.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().StringVar(&bridgeListenAddr, "listen", ":8420", "Address to listen on for WebSocket clients")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func runBridge(cmd *cobra.Command, args []string) error {
	serialConn, connInfo, err := openTarget(transport.Target{Port: portName, Baud: baudRate, Role: transport.RolePrimary})
	if err != nil {
		return err
	}
	defer serialConn.Close()

	fmt.Printf("hidbridge - WebSocket Bridge\n")
	fmt.Printf("Serial: %s\n", connInfo)
	fmt.Printf("Listening on %s (ws://.../ws)\n\n", bridgeListenAddr)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			fmt.Printf("upgrade failed: %v\n", err)
			return
		}
		defer wsConn.Close()
		fmt.Printf("client connected: %s\n", r.RemoteAddr)
		bridgeClient(serialConn, wsConn)
		fmt.Printf("client disconnected: %s\n", r.RemoteAddr)
	})

	return http.ListenAndServe(bridgeListenAddr, mux)
}

// bridgeClient pumps bytes between the serial link and one WebSocket
// client in both directions until either side closes.
func bridgeClient(serialConn transport.Connection, wsConn *websocket.Conn) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		buf := make([]byte, 256)
		for {
			n, err := serialConn.Read(buf)
			if n > 0 {
				if err := wsConn.WriteMessage(websocket.BinaryMessage, buf[:n]); err != nil {
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					fmt.Printf("serial read error: %v\n", err)
				}
				return
			}
		}
	}()

	for {
		messageType, data, err := wsConn.ReadMessage()
		if err != nil {
			break
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if _, err := serialConn.Write(data); err != nil {
			fmt.Printf("serial write error: %v\n", err)
			break
		}
	}

	<-done
}
