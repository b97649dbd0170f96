package mediabackend

// Register decoders for the image formats visuals commonly arrive in;
// image.Decode dispatches on these via their registered signatures.
import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)
