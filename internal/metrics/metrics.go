// Package metrics exposes application metrics collectors.
package metrics

const namespace = "dashpulse"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
