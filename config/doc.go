// Package config loads the declarative setup of a reconcile session.
//
// Configuration comes from a YAML or JSON file read through viper, an
// optional .env file and RECONCILE_ prefixed environment variables. Scalar
// fields take their defaults from `default` struct tags.
//
// # Handlers
//
// Sort and merge handlers are declared as entries naming a pattern engine,
// a search expression and a callback:
//
//	sort:
//	  - name: items
//	    engine: lookup
//	    search: items
//	    item_signature: id
//	merge:
//	  - name: profiles
//	    engine: expr
//	    search: 'kind == "map" && depth == 2 && path[0] == "profiles"'
//	    object_signature: id
//	    ignore: [updated_at]
//
// BuildHandlers resolves callback names against a CallbackRegistry and
// compiles the search expressions with a reconcile.PatternCompiler.
//
// # Logging
//
//	log, _ := config.NewLogger(cfg.Log)
//	session := reconcile.NewSession(reconcile.WithLogger(reconcile.NewZapLogger(log)))
package config
