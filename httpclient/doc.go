// Package httpclient provides the outbound HTTP client used to download
// media and to reach HTTP speech-to-text sidecars.
//
// Responses with a non-2xx status are returned as a classified *Error so
// callers can map them (a 404 on a video URL is a client mistake, a 503 is
// worth retrying). Transient failures are retried when Config.Retry is set.
//
//	client, _ := httpclient.New(httpclient.Config{Timeout: time.Minute})
//	stream, err := client.DoStream(ctx, httpclient.Request{Method: http.MethodGet, URL: videoURL})
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
package httpclient
