// Package config loads pagerouter.json, the configuration read by the
// pagerouter command.
//
// # Configuration File Structure
//
//	{
//	  "mode": "history",
//	  "title": "Docs",
//	  "routes": [
//	    {"path": "/", "src": "home.html", "title": "Home"},
//	    {"path": "/guide", "exact": false, "src": "s3://docs/guide.html"},
//	    {"path": "/users/:id", "src": "user.html", "meta": {"auth": true}}
//	  ],
//	  "content": {
//	    "dir": "content",
//	    "baseURL": "https://cdn.example.com/pages/",
//	    "s3": {"region": "eu-west-1"}
//	  },
//	  "server": {
//	    "addr": ":8080",
//	    "metricsPath": "/metrics",
//	    "websocket": {"readBufferSize": 4096, "handshakeTimeout": "10s"}
//	  }
//	}
//
// PAGEROUTER_MODE and PAGEROUTER_ADDR override "mode" and "server.addr".
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
