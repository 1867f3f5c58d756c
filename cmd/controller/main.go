package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"dc-harden/pkg/api"
	"dc-harden/pkg/db"
	"dc-harden/pkg/store"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	token := flag.String("token", "", "bootstrap auth token (optional)")
	storeType := flag.String("store", "memory", "store backend: memory|consul (requires build tag consul)")
	consulAddr := flag.String("consul-addr", "127.0.0.1:8500", "consul address (when store=consul)")
	tlsCert := flag.String("tls-cert", "", "TLS cert path (enables HTTPS if set with --tls-key)")
	tlsKey := flag.String("tls-key", "", "TLS key path (enables HTTPS if set with --tls-cert)")
	flag.Parse()

	var reportStore store.ReportStore
	switch *storeType {
	case "consul":
		reportStore = store.NewConsulStore(*consulAddr)
	case "memory":
		reportStore = store.NewMemoryStore()
	default:
		log.Fatalf("unsupported store type: %s", *storeType)
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, reportStore, *token)

	if gdb, err := db.Init(); err != nil {
		log.Printf("mysql unavailable, auth endpoints disabled: %v", err)
	} else {
		api.SetDB(gdb)
		authHandler := &api.AuthHandler{DB: gdb}
		authHandler.RegisterRoutes(mux)
	}

	hub := api.NewWSHub()
	mux.HandleFunc("/ws/agent", hub.HandleAgentWS)
	mux.HandleFunc("/ws/logs", hub.HandleUILogs)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("controller listening on %s", *addr)
	var err error
	if *tlsCert != "" && *tlsKey != "" {
		err = srv.ListenAndServeTLS(*tlsCert, *tlsKey)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}
