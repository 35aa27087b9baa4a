// Package translate maps Khawasu mesh devices onto the smart-home
// platform model: discovery descriptors, state queries and command
// dispatch, plus a TTL cache over the mesh device list.
package translate
