// Package docker wraps the docker CLI calls used to build and publish the
// service images, and probes the deployed services over HTTP.
package docker
