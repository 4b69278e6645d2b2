// Package transport attaches session credentials to outgoing HTTP requests.
//
// [Transport] is an http.RoundTripper that injects the current access token
// as a Bearer header and, on a 401 response, rotates the token pair once and
// retries. Wrap it around the client an application uses to call protected
// platform APIs.
//
// # Architecture boundaries
//
//   - Reads tokens through a narrow [TokenSource]; it never touches the
//     vault or the session store directly.
//   - Retries at most once per request. A second 401 is returned to the
//     caller.
//
// # What this package must NOT do
//
//   - Decide whether a request is authorized. The backend does that.
//   - Retry requests whose body cannot be replayed.
package transport
