// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. Generated networks have at most a few
// hundred layers, so everything is kept in maps guarded by a single RWMutex.
package inmemorytopology
