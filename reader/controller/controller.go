package controllerv1

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

type Controller struct {
}

// PromError writes the error body shared by every endpoint:
// {"status":"error","errorType":"error","error":msg}.
func PromError(code int, msg string, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json := jsoniter.ConfigFastest
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("status")
	stream.WriteString("error")
	stream.WriteMore()

	stream.WriteObjectField("errorType")
	stream.WriteString("error")
	stream.WriteMore()

	stream.WriteObjectField("error")
	stream.WriteString(msg)
	stream.WriteObjectEnd()

	w.Write(stream.Buffer())
}

func writeJSON(code int, res any, w http.ResponseWriter) error {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(res)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(body)
	return err
}
