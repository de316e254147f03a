package fetcher

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// charsetReader lets the decoder handle non-UTF8 documents. NCBI baseline
// files occasionally declare ISO-8859-1.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

// StreamXML decodes every element whose local name matches elementName and
// sends the decoded values to a channel. Efetch responses and funding RSS
// feeds arrive as one large document of repeated elements; decoding them one
// at a time keeps memory flat even for multi-hundred-MB baseline files. Both
// channels are closed when processing completes.
func StreamXML[T any](ctx context.Context, r io.Reader, elementName string) (<-chan T, <-chan error) {
	itemCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(itemCh)
		defer close(errCh)

		dec := xml.NewDecoder(r)
		dec.CharsetReader = charsetReader

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "xml: context cancelled")
				return
			}

			tok, err := dec.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "xml: read token")
				return
			}

			start, ok := tok.(xml.StartElement)
			if !ok || start.Name.Local != elementName {
				continue
			}

			var item T
			if err := dec.DecodeElement(&item, &start); err != nil {
				errCh <- eris.Wrapf(err, "xml: decode %s", elementName)
				return
			}

			select {
			case itemCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "xml: context cancelled")
				return
			}
		}
	}()

	return itemCh, errCh
}
