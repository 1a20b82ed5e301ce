// Package config provides configuration parsing for the cellstore inspector.
//
// The configuration is stored in cellstore.json or cellstore.yaml in the
// working directory. Missing fields take their defaults.
//
// # Configuration File Structure
//
//	{
//	  "inspector": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "eventBuffer": 256,
//	    "clientQueue": 64,
//	    "allowedOrigins": ["http://localhost:3000"]
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "cellstore"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "cellstore"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Address())
package config
