// Package http exposes the sites services over net/http.
//
// Public read routes:
//   - GET /sites/{slug}/public
//   - GET /pages?project={id}&slug={slug}&locale={locale}
//   - GET /pages/{id}/snapshot
//   - GET /navigation?project={id}&location={header|footer}&locale={locale}
//
// Editor routes mount on the same mux under /projects, /pages, /sections,
// /fields and /navigation. Operational endpoints are /healthz and /metrics.
package http
