// Package khawasu is the client side of the Khawasu logical driver.
//
// It exposes the driver as the Driver interface (list devices, execute an
// action, read an action value) over an MQTT request/response link, and
// owns the codec that maps typed values to each action type's byte layout.
// Everything above this package works with typed values only.
package khawasu
