/*
Package registry holds per-type model definitions declared once, next to
the type itself.

A definition plays the part of class-level configuration: the namespace,
the unique-together fields, expiry and scan policy. Stores built for a
registered type pick it up for every option left at its zero value.

	type IceCream struct {
	    Flavor string `json:"flavor"`
	    Size   string `json:"size"`
	}

	func init() {
	    registry.Register[IceCream](registry.Definition{
	        UniqueTogether: []string{"flavor", "size"},
	        Expire:         time.Hour,
	    })
	}

Namespaces are unique across the registry, since two types sharing one
would overwrite each other's records. The registry is thread-safe and
should be populated during initialization, typically in init() functions.
*/
package registry
