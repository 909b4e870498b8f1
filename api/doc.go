// Package api implements the transcription endpoints:
//
//	POST /transcribe/?video_url=<url>&language=<lang>
//	POST /upload-video/?language=<lang>   (multipart field "file")
//
// Both store the video in the working directory, transcribe it, delete it
// and answer 201 with the transcript. Client and upstream failures use a
// {"detail": "..."} body; a failed delete answers 500 {"error": "..."}.
package api
