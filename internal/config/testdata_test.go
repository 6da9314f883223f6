package config

// validConfigYAML is a minimal valid configuration for testing.
const validConfigYAML = `
apiVersion: avaroute.io/v1
kind: Gateway
metadata:
  name: test-gateway
spec:
  listeners:
    - name: http
      port: 8080
  backends:
    - name: users
      url: http://localhost:8081
  routes:
    - name: users
      path: /users/[:id([0-9]+)]
      backend: users
    - name: health
      path: /healthz
      directResponse:
        status: 200
        body: ok
`

// invalidConfigYAML has a route specification that does not compile.
const invalidConfigYAML = `
apiVersion: avaroute.io/v1
kind: Gateway
metadata:
  name: test-gateway
spec:
  listeners:
    - name: http
      port: 8080
  routes:
    - name: broken
      path: /a/[b][c]
      directResponse:
        status: 200
`
