package ui

import (
	"errors"
	"strconv"

	"github.com/ytget/direct-downloader/internal/model"
)

// progressView is what the progress row shows: bar fraction, status text and
// the size caption
type progressView struct {
	Fraction float64
	Status   string
	Size     string
}

func waitingView(l *Localization) progressView {
	return progressView{Status: l.GetText(KeyWaiting)}
}

func preparingView(l *Localization) progressView {
	return progressView{Status: l.GetText(KeyPreparing)}
}

// eventView maps a progress event onto the progress row. Known totals show
// "received / total", unknown totals only the received count.
func eventView(l *Localization, ev model.ProgressEvent) progressView {
	if ev.IsComplete() {
		return progressView{
			Fraction: 1,
			Status:   l.GetText(KeyDone),
			Size:     model.FormatBytes(ev.TotalBytes),
		}
	}

	view := progressView{
		Fraction: ev.Fraction(),
		Status:   l.GetText(KeyDownloading),
	}
	if ev.TotalBytes > 0 && !ev.Indeterminate {
		view.Size = model.FormatBytes(ev.ReceivedBytes) + " / " + model.FormatBytes(ev.TotalBytes)
	} else {
		view.Size = model.FormatBytes(ev.ReceivedBytes)
	}
	return view
}

// failureView resets the bar and names the failure
func failureView(l *Localization, err error) progressView {
	var retrievalErr *model.RetrievalError
	if !errors.As(err, &retrievalErr) {
		return progressView{Status: l.Textf(KeyFailed, err)}
	}

	switch retrievalErr.Kind {
	case model.ErrorKindTransport:
		return progressView{Status: l.GetText(KeyFailedNet)}
	case model.ErrorKindHTTP:
		return progressView{Status: l.Textf(KeyFailed, "HTTP "+strconv.Itoa(retrievalErr.HTTPStatus))}
	default:
		return progressView{Status: l.Textf(KeyFailed, l.Hint(retrievalErr))}
	}
}
