// Package alice defines the smart-home platform wire schema: device
// discovery descriptors, state query and action payloads, and the
// string constants the platform recognises for types, instances,
// units and statuses.
package alice
