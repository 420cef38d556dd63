package scope

import (
	"path"
	"strings"
)

// disallowedExtensions are file types that never hold crawlable HTML:
// media, archives, binaries, office documents, data files and page assets.
var disallowedExtensions = map[string]struct{}{
	// stylesheets, scripts and fonts
	"css": {}, "js": {}, "woff": {}, "woff2": {}, "ttf": {}, "eot": {},
	// images
	"bmp": {}, "gif": {}, "jpg": {}, "jpeg": {}, "ico": {}, "png": {}, "tif": {}, "tiff": {},
	"svg": {}, "webp": {}, "psd": {}, "img": {},
	// audio and video
	"mid": {}, "mp2": {}, "mp3": {}, "mp4": {}, "wav": {}, "avi": {}, "mov": {}, "mpeg": {},
	"mpg": {}, "ram": {}, "m4v": {}, "m4a": {}, "mkv": {}, "ogg": {}, "ogv": {}, "rm": {},
	"smil": {}, "wmv": {}, "swf": {}, "wma": {}, "flac": {},
	// documents
	"pdf": {}, "ps": {}, "eps": {}, "tex": {}, "ppt": {}, "pptx": {}, "pps": {}, "ppsx": {},
	"doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "odt": {}, "ods": {}, "odp": {},
	"rtf": {}, "epub": {}, "thmx": {}, "mso": {}, "bib": {},
	// data
	"names": {}, "data": {}, "dat": {}, "csv": {}, "arff": {}, "mat": {}, "sql": {},
	"cnf": {}, "sha1": {}, "json": {},
	// archives and binaries
	"exe": {}, "bz2": {}, "tar": {}, "msi": {}, "bin": {}, "7z": {}, "dmg": {}, "iso": {},
	"dll": {}, "tgz": {}, "jar": {}, "zip": {}, "rar": {}, "gz": {}, "xz": {}, "apk": {},
	"deb": {}, "rpm": {},
}

// IsDisallowedExtension reports whether the decoded URL path ends in a
// disallowed file extension. Only the extension of the last segment counts,
// so "/pdf-guide.html" and "/files.pdf/index.html" are allowed.
func IsDisallowedExtension(urlPath string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(path.Base(urlPath)), "."))
	if ext == "" {
		return false
	}
	_, ok := disallowedExtensions[ext]
	return ok
}
