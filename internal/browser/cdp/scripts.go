// internal/browser/cdp/scripts.go
package cdp

import (
	"strings"

	json "github.com/json-iterator/go"
)

// Reserved element ids.
const (
	rootID   = "html"
	bodyID   = "body"
	windowID = "window"
)

// prelude installs window.__zarm. It is idempotent and is also registered to
// run on every new document.
const prelude = `(function () {
  if (window.__zarm) { return; }
  var seq = 0;
  var subs = {};
  var root = function () { return document.documentElement; };

  function tag(el) {
    if (!el || el.nodeType !== 1) { return ""; }
    if (el === root()) { return "html"; }
    if (el === document.body) { return "body"; }
    var id = el.getAttribute("data-zarm-id");
    if (!id) {
      id = "z" + (++seq);
      el.setAttribute("data-zarm-id", id);
    }
    return id;
  }

  function get(id) {
    if (id === "html") { return root(); }
    if (id === "body") { return document.body; }
    if (id === "window") { return window; }
    if (!id) { return null; }
    return document.querySelector('[data-zarm-id="' + id + '"]');
  }

  function css(el, prop) {
    return window.getComputedStyle(el, null).getPropertyValue(prop);
  }

  function scrolling(el) {
    if (el === root() || el === document.body) {
      return document.scrollingElement || root();
    }
    return el;
  }

  var zero = { left: 0, top: 0, width: 0, height: 0 };

  window.__zarm = {
    find: function (sel) {
      try { return tag(document.querySelector(sel)); } catch (e) { return ""; }
    },
    bounding: function (id) {
      var el = get(id);
      if (!el || el === window) { return zero; }
      var r = el.getBoundingClientRect();
      return { left: r.left, top: r.top, width: r.width, height: r.height };
    },
    offset: function (id) {
      var el = get(id);
      if (!el || el === window) { return zero; }
      return { left: el.offsetLeft, top: el.offsetTop, width: el.offsetWidth, height: el.offsetHeight };
    },
    outer: function (id) {
      var el = get(id);
      if (!el || el === window) { return { width: 0, height: 0 }; }
      var x = parseFloat(css(el, "margin-top")) + parseFloat(css(el, "margin-bottom"));
      var y = parseFloat(css(el, "margin-left")) + parseFloat(css(el, "margin-right"));
      return { width: el.offsetWidth + (y || 0), height: el.offsetHeight + (x || 0) };
    },
    offsetParent: function (id) {
      var el = get(id);
      var p = el && el.offsetParent;
      if (!p || p === document.body) { return "html"; }
      return tag(p);
    },
    scrollParent: function (id) {
      var el = get(id);
      for (var p = el && el.parentNode; p && p.nodeType === 1; p = p.parentNode) {
        if (p === document.body || p === root()) { break; }
        var ov = css(p, "overflow") + css(p, "overflow-x") + css(p, "overflow-y");
        if (ov.indexOf("auto") !== -1 || ov.indexOf("scroll") !== -1) { return tag(p); }
      }
      return "html";
    },
    fixed: function (id) {
      for (var el = get(id); el && el.nodeType === 1 && el !== document.body; el = el.parentNode) {
        if (css(el, "position") === "fixed") { return true; }
      }
      return false;
    },
    scroll: function (id) {
      var el = get(id);
      if (!el || el === window) { return { left: 0, top: 0 }; }
      el = scrolling(el);
      return { left: el.scrollLeft, top: el.scrollTop };
    },
    viewport: function () {
      return { width: root().clientWidth, height: root().clientHeight };
    },
    style: function (id, props) {
      var el = get(id);
      if (!el || el === window) { return; }
      for (var k in props) {
        if (props[k] === "") { el.style.removeProperty(k); } else { el.style.setProperty(k, props[k]); }
      }
    },
    attr: function (id, name, value, remove) {
      var el = get(id);
      if (!el || el === window) { return; }
      if (remove) { el.removeAttribute(name); } else { el.setAttribute(name, value); }
    },
    transform: function () {
      var s = root().style;
      var names = [["transform", "transform"], ["webkitTransform", "-webkit-transform"],
        ["MozTransform", "-moz-transform"], ["msTransform", "-ms-transform"], ["OTransform", "-o-transform"]];
      for (var i = 0; i < names.length; i++) {
        if (s[names[i][0]] !== undefined) { return names[i][1]; }
      }
      return "";
    },
    query: function (id, sel) {
      var el = get(id);
      if (!el || el === window) { return ""; }
      try { return tag(el.querySelector(sel)); } catch (e) { return ""; }
    },
    remove: function (id) {
      var el = get(id);
      if (el && el !== window && el.parentNode) { el.parentNode.removeChild(el); }
    },
    listen: function (sub, id, event, binding) {
      var t = get(id);
      if (!t) { return false; }
      var h = function () { window[binding](sub); };
      t.addEventListener(event, h, { passive: true });
      subs[sub] = { target: t, event: event, handler: h };
      return true;
    },
    frame: function (sub, binding) {
      subs[sub] = {
        raf: window.requestAnimationFrame(function () {
          delete subs[sub];
          window[binding](sub);
        })
      };
    },
    cancel: function (sub) {
      var s = subs[sub];
      if (!s) { return; }
      delete subs[sub];
      if (s.raf !== undefined) { window.cancelAnimationFrame(s.raf); return; }
      s.target.removeEventListener(s.event, s.handler, { passive: true });
    }
  };
})();`

// codec sorts map keys so generated scripts are stable.
var codec = json.ConfigCompatibleWithStandardLibrary

// call renders window.__zarm.fn(args...) with JSON-encoded arguments.
func call(fn string, args ...interface{}) (string, error) {
	var b strings.Builder
	b.WriteString("window.__zarm.")
	b.WriteString(fn)
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		enc, err := codec.Marshal(arg)
		if err != nil {
			return "", err
		}
		b.Write(enc)
	}
	b.WriteByte(')')
	return b.String(), nil
}
